package processor

import (
	"math"
	"slices"

	"github.com/talgya/array-sim/internal/entropy"
	"github.com/talgya/array-sim/internal/jobs"
)

// Processor is a compute unit in the fleet. Units are created once at game
// start and never removed; failed units return to service via Replace.
type Processor struct {
	Name           string   `json:"name"`
	Speed          float64  `json:"speed"`
	QualityBias    int8     `json:"quality_bias"`
	InstructionSet []string `json:"instruction_set"`
	UpkeepCost     uint64   `json:"upkeep_cost"`
	Status         Status   `json:"-"`

	// Thermal and reliability profile.
	ReliabilityBase    float64 `json:"reliability_base"`
	CoolingRequired    bool    `json:"cooling_required"`
	CoolingLevel       uint8   `json:"cooling_level"`
	CoolingCap         uint8   `json:"cooling_cap"`
	HardeningLevel     uint8   `json:"hardening_level"`
	RequiresCoolingMin uint8   `json:"requires_cooling_min"`

	// Wear model, only active for finite-lifespan units.
	FiniteLifespan bool    `json:"finite_lifespan"`
	MTTFTicks      uint64  `json:"mttf_ticks"`
	Wear           float64 `json:"wear"`
	Fragility      float64 `json:"fragility"`

	ReplaceCostRatio float64            `json:"replace_cost_ratio"`
	PurchaseCost     uint64             `json:"purchase_cost"`
	PowerDrawBase    float64            `json:"power_draw_base"`
	PowerDrawMod     map[string]float64 `json:"power_draw_mod,omitempty"`
	HeatOutputBase   float64            `json:"heat_output_base"`

	// Automation policy.
	DaemonMode       DaemonMode         `json:"daemon_mode"`
	DaemonUnlocked   bool               `json:"daemon_unlocked"`
	DaemonAffinity   map[string]float64 `json:"daemon_affinity,omitempty"`
	DaemonPriority   int32              `json:"daemon_priority"`
	HonorCoolingMins bool               `json:"honor_cooling_mins"`
	DaemonPenalty    DaemonPenalty      `json:"daemon_penalty"`

	// Last-tick snapshot, recomputed at runtime and never persisted.
	LastReliability      float64 `json:"-"`
	LastHeat             float64 `json:"-"`
	LastPowerDraw        float64 `json:"-"`
	LastEffectiveCooling uint8   `json:"-"`
}

// Starter returns the unit every fresh game begins with.
func Starter() *Processor {
	p := &Processor{
		Name:             "Model F12-Scalar",
		Speed:            1.0,
		InstructionSet:   []string{jobs.TagGeneral},
		UpkeepCost:       8,
		Status:           Idle{},
		ReliabilityBase:  DefaultReliability,
		CoolingCap:       DefaultCoolingCap,
		ReplaceCostRatio: DefaultReplaceRatio,
		PowerDrawBase:    DefaultPowerDraw,
		HeatOutputBase:   DefaultHeatOutput,
		PurchaseCost:     DefaultPurchaseCost,
		HonorCoolingMins: true,
		DaemonPenalty:    DefaultPenalty(),
	}
	p.EnsureRuntimeDefaults()
	return p
}

// EnsureRuntimeDefaults repairs zeroed hardware fields and resets the
// display snapshot to idle values.
func (p *Processor) EnsureRuntimeDefaults() {
	if p.Status == nil {
		p.Status = Idle{}
	}
	if p.CoolingCap == 0 {
		p.CoolingCap = DefaultCoolingCap
	}
	if p.ReplaceCostRatio == 0 {
		p.ReplaceCostRatio = DefaultReplaceRatio
	}
	if p.ReliabilityBase <= 0 {
		p.ReliabilityBase = DefaultReliability
	}
	if p.PowerDrawBase == 0 {
		p.PowerDrawBase = DefaultPowerDraw
	}
	if p.HeatOutputBase == 0 {
		p.HeatOutputBase = DefaultHeatOutput
	}
	if p.PurchaseCost == 0 {
		p.PurchaseCost = DefaultPurchaseCost
	}
	p.resetSnapshot()
}

func (p *Processor) resetSnapshot() {
	p.LastReliability = p.ReliabilityBase
	p.LastHeat = 0
	p.LastEffectiveCooling = p.CoolingLevel
	p.LastPowerDraw = p.IdlePowerDraw()
}

// IdlePowerDraw is the draw of an unloaded unit at its installed cooling.
func (p *Processor) IdlePowerDraw() float64 {
	factor := 1 + electricCoolingScale*float64(p.CoolingLevel)
	return math.Max(p.PowerDrawBase*factor, 0)
}

// IsIdle reports whether the unit can take an assignment right now.
func (p *Processor) IsIdle() bool {
	_, ok := p.Status.(Idle)
	return ok
}

// IsFunctional is false once the unit has burnt out or been destroyed.
func (p *Processor) IsFunctional() bool {
	switch p.Status.(type) {
	case BurntOut, Destroyed:
		return false
	}
	return true
}

// Supports reports whether tag is in the instruction set.
func (p *Processor) Supports(tag string) bool {
	return slices.Contains(p.InstructionSet, tag)
}

// AddTag extends the instruction set; duplicates are ignored.
func (p *Processor) AddTag(tag string) {
	if !p.Supports(tag) {
		p.InstructionSet = append(p.InstructionSet, tag)
	}
}

// Assign moves the unit into Working. Callers validate idleness and support.
func (p *Processor) Assign(job jobs.Job, totalMs uint64, penalty *DaemonPenalty) {
	p.Status = &Working{
		Job:         job,
		RemainingMs: totalMs,
		TotalMs:     totalMs,
		Penalty:     penalty,
	}
	p.LastPowerDraw = p.IdlePowerDraw()
}

// Tick advances the unit by deltaMs. Failure and wear are rolled before the
// completion check, so a job can be lost on what would have been its last tick.
func (p *Processor) Tick(deltaMs uint64, rng entropy.Source, coolingBonus uint8) Event {
	switch st := p.Status.(type) {
	case Idle:
		p.LastPowerDraw = p.IdlePowerDraw()
		return nil
	case *Working:
		return p.tickWorking(st, deltaMs, rng, coolingBonus)
	default:
		return nil
	}
}

func (p *Processor) tickWorking(w *Working, deltaMs uint64, rng entropy.Source, coolingBonus uint8) Event {
	ev := p.Evaluate(w.Job, coolingBonus)
	p.LastReliability = ev.Reliability
	p.LastHeat = ev.Heat
	p.LastEffectiveCooling = ev.EffectiveCooling
	p.LastPowerDraw = ev.PowerDraw

	if ev.Reliability <= 0 || rng.Float64() > ev.Reliability {
		p.Status = BurntOut{}
		return Burnout{Lost: w.Job}
	}

	if p.FiniteLifespan && p.MTTFTicks > 0 {
		baseWear := float64(deltaMs) / float64(p.MTTFTicks)
		heatWear := math.Max(ev.Heat, 0) * 0.0005 * (float64(deltaMs) / 1000)
		hazardWear := ev.HazardPenalty * 0.05
		p.Wear += baseWear + heatWear + hazardWear
		if p.Wear >= 1.0 {
			p.Status = Destroyed{}
			return Destruction{Lost: w.Job}
		}
	}

	if w.RemainingMs > deltaMs {
		w.RemainingMs -= deltaMs
		w.Overheating = ev.Heat > 1.0 || p.RequiresCoolingMin > ev.EffectiveCooling
		return nil
	}

	p.Status = Idle{}
	return Completed{Done: w.Job, Penalty: w.Penalty}
}

// Replace restores a unit to service with a fresh chassis.
func (p *Processor) Replace() {
	p.Status = Idle{}
	p.Wear = 0
	p.resetSnapshot()
}

// ReplacementCost is the service-rate cost for a non-functional unit, or 0
// for a healthy one.
func (p *Processor) ReplacementCost() uint64 {
	if p.IsFunctional() {
		return 0
	}
	cost := uint64(math.Round(float64(p.PurchaseCost) * p.ReplaceCostRatio))
	return max(cost, 1)
}

// RemainingAndTotal returns job progress when working.
func (p *Processor) RemainingAndTotal() (remaining, total uint64, ok bool) {
	if w, isWorking := p.Status.(*Working); isWorking {
		return w.RemainingMs, w.TotalMs, true
	}
	return 0, 0, false
}

// Snapshot builds the display view.
func (p *Processor) Snapshot() Snapshot {
	s := Snapshot{
		Name:             p.Name,
		Status:           p.Status.Kind(),
		Reliability:      math.Max(p.LastReliability, 0),
		Heat:             p.LastHeat,
		PowerDraw:        p.LastPowerDraw,
		EffectiveCooling: p.LastEffectiveCooling,
		Wear:             p.Wear,
		Mode:             p.DaemonMode,
	}
	if w, ok := p.Status.(*Working); ok {
		s.RemainingMs = w.RemainingMs
		s.TotalMs = w.TotalMs
		s.Overheating = w.Overheating
	}
	return s
}
