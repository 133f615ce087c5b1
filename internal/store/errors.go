package store

import (
	"errors"
	"fmt"
)

// Purchase errors. No state changes when any of these is returned.
var (
	ErrUnknownItem             = errors.New("unknown store item")
	ErrProcessorSelection      = errors.New("select a processor first")
	ErrProcessorHealthy        = errors.New("selected processor is operational")
	ErrNoMatchingProcessors    = errors.New("no matching processors require replacement")
	ErrUpgradeAtCap            = errors.New("upgrade already at maximum level")
	ErrDaemonFirmwareInstalled = errors.New("daemon firmware already installed")
)

// SoldOutError is returned once an item hits its purchase limit.
type SoldOutError struct {
	Item string
}

func (e *SoldOutError) Error() string {
	return fmt.Sprintf("%s is sold out", e.Item)
}

// InstructionUnlockedError is returned when a tag is already available.
type InstructionUnlockedError struct {
	Tag string
}

func (e *InstructionUnlockedError) Error() string {
	return fmt.Sprintf("%s instruction set already unlocked", e.Tag)
}

// InsufficientCreditsError carries the price the player could not meet.
type InsufficientCreditsError struct {
	Cost uint64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("not enough credits (requires %d)", e.Cost)
}
