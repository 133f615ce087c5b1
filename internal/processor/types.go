// Package processor models a simulated compute unit: its hardware profile,
// status lifecycle, thermal evaluation, and per-tick advancement.
package processor

import (
	"github.com/talgya/array-sim/internal/jobs"
)

// Hardware defaults for units created without explicit values.
const (
	DefaultReliability   = 0.995
	DefaultCoolingCap    = 3
	DefaultReplaceRatio  = 0.35
	DefaultPowerDraw     = 4.2
	DefaultHeatOutput    = 1.0
	DefaultPurchaseCost  = 180
	MaxHardeningLevel    = 3
	heatFailureFactor    = 0.12
	electricCoolingScale = 0.05
)

// DaemonMode is the per-processor automation policy.
type DaemonMode uint8

const (
	DaemonOff DaemonMode = iota
	DaemonAssist
	DaemonAuto
)

// String returns the display label for the mode.
func (m DaemonMode) String() string {
	switch m {
	case DaemonAssist:
		return "Assist"
	case DaemonAuto:
		return "Auto"
	default:
		return "Off"
	}
}

// Next cycles Off -> Assist -> Auto -> Off.
func (m DaemonMode) Next() DaemonMode {
	switch m {
	case DaemonOff:
		return DaemonAssist
	case DaemonAssist:
		return DaemonAuto
	default:
		return DaemonOff
	}
}

// DaemonPenalty is the automation tax applied to daemon-assigned work.
type DaemonPenalty struct {
	Quality        int8    `json:"quality"`
	TimeMultiplier float64 `json:"time_multiplier"`
}

// DefaultPenalty returns the penalty for units without firmware upgrades.
func DefaultPenalty() DaemonPenalty {
	return DaemonPenalty{Quality: -5, TimeMultiplier: 1.10}
}

// Ease applies the firmware install adjustment.
func (p *DaemonPenalty) Ease() {
	if p.Quality < -3 {
		p.Quality = -3
	}
	p.TimeMultiplier -= 0.02
	if p.TimeMultiplier < 1.02 {
		p.TimeMultiplier = 1.02
	}
}

// StatusKind names a Status variant for storage and display.
type StatusKind string

const (
	KindIdle      StatusKind = "idle"
	KindWorking   StatusKind = "working"
	KindBurntOut  StatusKind = "burnt_out"
	KindDestroyed StatusKind = "destroyed"
)

// Status is one of Idle, *Working, BurntOut, or Destroyed.
type Status interface {
	Kind() StatusKind
}

// Idle units accept assignments.
type Idle struct{}

// BurntOut is terminal until the unit is replaced.
type BurntOut struct{}

// Destroyed is terminal until the unit is replaced.
type Destroyed struct{}

// Working holds the single job a processor is executing.
// RemainingMs never exceeds TotalMs; TotalMs is fixed at assignment.
type Working struct {
	Job         jobs.Job       `json:"job"`
	RemainingMs uint64         `json:"remaining_ms"`
	TotalMs     uint64         `json:"total_ms"`
	Penalty     *DaemonPenalty `json:"daemon_penalty,omitempty"`
	Overheating bool           `json:"overheating"`
}

func (Idle) Kind() StatusKind      { return KindIdle }
func (*Working) Kind() StatusKind  { return KindWorking }
func (BurntOut) Kind() StatusKind  { return KindBurntOut }
func (Destroyed) Kind() StatusKind { return KindDestroyed }

// Event is emitted by Tick when a working unit changes state.
type Event interface {
	Job() jobs.Job
}

// Completed reports a finished job and the penalty it ran under.
type Completed struct {
	Done    jobs.Job
	Penalty *DaemonPenalty
}

// Burnout reports a reliability failure; the job is lost.
type Burnout struct {
	Lost jobs.Job
}

// Destruction reports a wear failure; the job is lost.
type Destruction struct {
	Lost jobs.Job
}

func (e Completed) Job() jobs.Job   { return e.Done }
func (e Burnout) Job() jobs.Job     { return e.Lost }
func (e Destruction) Job() jobs.Job { return e.Lost }

// Evaluation is the thermal and reliability picture for one job on one unit.
type Evaluation struct {
	Reliability      float64
	Heat             float64
	EffectiveCooling uint8
	HazardPenalty    float64
	PowerDraw        float64
}

// Snapshot is the read-only display view of a processor.
type Snapshot struct {
	Name             string
	Status           StatusKind
	Reliability      float64
	Heat             float64
	PowerDraw        float64
	EffectiveCooling uint8
	RemainingMs      uint64
	TotalMs          uint64
	Overheating      bool
	Wear             float64
	Mode             DaemonMode
}
