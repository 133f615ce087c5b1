package processor

import (
	"errors"
	"fmt"
)

// Assignment errors. Validation runs in this order: index, idle, tag, functional.
var (
	ErrInvalidProcessor     = errors.New("invalid processor index")
	ErrProcessorBusy        = errors.New("processor is busy")
	ErrProcessorInoperative = errors.New("processor is not operational")
)

// IncompatibleInstructionError reports the tag a unit is missing.
type IncompatibleInstructionError struct {
	Tag string
}

func (e *IncompatibleInstructionError) Error() string {
	return fmt.Sprintf("processor lacks instruction %s", e.Tag)
}
