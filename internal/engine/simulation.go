// Package engine owns the game state and advances it: job spawning, the daily
// economic cycle, processor ticks, automation, and the store.
package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/talgya/array-sim/internal/economy"
	"github.com/talgya/array-sim/internal/entropy"
	"github.com/talgya/array-sim/internal/jobs"
	"github.com/talgya/array-sim/internal/processor"
	"github.com/talgya/array-sim/internal/store"
)

// Simulation is the single owner of GameState. All mutation goes through its
// methods, one at a time; it is not safe for concurrent use.
type Simulation struct {
	cfg   Config
	state GameState
	rng   entropy.Source

	jobSpawnTimer time.Duration
	dayTimer      time.Duration
	messages      []string
}

// NewSimulation starts a fresh game.
func NewSimulation(cfg Config, rng entropy.Source) *Simulation {
	return FromState(NewGameState(cfg), cfg, rng)
}

// FromState resumes a saved game. The state is reconciled with the current
// catalog and tag list before use.
func FromState(state GameState, cfg Config, rng entropy.Source) *Simulation {
	state.reconcile()
	return &Simulation{
		cfg:      cfg,
		state:    state,
		rng:      rng,
		messages: make([]string, 0, cfg.MessageLimit),
	}
}

// Update advances the game by delta of simulated time.
func (s *Simulation) Update(delta time.Duration) {
	s.jobSpawnTimer += delta
	for s.jobSpawnTimer >= s.cfg.JobSpawnInterval {
		s.jobSpawnTimer -= s.cfg.JobSpawnInterval
		s.spawnJob()
	}

	s.dayTimer += delta
	for s.dayTimer >= s.cfg.DayLength {
		s.dayTimer -= s.cfg.DayLength
		s.runDailyCycle()
	}

	s.tickProcessors(delta)
	s.countdownThermalPaste(delta)
	s.checkDaemonUnlock()
	s.runAutoPass()
}

func (s *Simulation) coolingBonus() uint8 {
	if s.state.ThermalPasteMs > 0 {
		return store.ThermalPasteLevel
	}
	return 0
}

func (s *Simulation) tickProcessors(delta time.Duration) {
	deltaMs := uint64(delta.Milliseconds())
	if deltaMs == 0 {
		return
	}
	bonus := s.coolingBonus()

	type indexed struct {
		index int
		event processor.Event
	}
	var fired []indexed
	for i, p := range s.state.Processors {
		if ev := p.Tick(deltaMs, s.rng, bonus); ev != nil {
			fired = append(fired, indexed{i, ev})
		}
	}

	for _, f := range fired {
		p := s.state.Processors[f.index]
		switch ev := f.event.(type) {
		case processor.Completed:
			s.resolveCompleted(p, ev)
		case processor.Burnout:
			s.pushMessage(fmt.Sprintf("%s burnt out while processing %s. Unit offline.", p.Name, ev.Lost.Name))
			slog.Warn("processor burnt out", "processor", p.Name, "index", f.index, "job", ev.Lost.ID)
		case processor.Destruction:
			s.pushMessage(fmt.Sprintf("%s was destroyed during %s. Replacement required.", p.Name, ev.Lost.Name))
			slog.Warn("processor destroyed", "processor", p.Name, "index", f.index, "job", ev.Lost.ID, "wear", p.Wear)
		}
	}
}

func (s *Simulation) resolveCompleted(p *processor.Processor, done processor.Completed) {
	job := done.Done
	quality := economy.RollQuality(job, p, done.Penalty, s.rng)
	payout := economy.Payout(job, quality)
	s.state.Credits += payout

	stored := s.state.Storage.Store(job.DataOutput)
	if lost := job.DataOutput - stored; lost > 0 {
		s.pushMessage(fmt.Sprintf("Storage overflow: %d data units released back into the ether.", lost))
	}
	s.pushMessage(fmt.Sprintf("%s completed on %s | quality %d | +%s cr", job.Name, p.Name, quality, credits(payout)))
}

func (s *Simulation) countdownThermalPaste(delta time.Duration) {
	if s.state.ThermalPasteMs == 0 {
		return
	}
	deltaMs := uint64(delta.Milliseconds())
	if deltaMs == 0 {
		return
	}
	if deltaMs >= s.state.ThermalPasteMs {
		s.state.ThermalPasteMs = 0
		s.pushMessage("Thermal paste bonus has dissipated.")
		return
	}
	s.state.ThermalPasteMs -= deltaMs
}

func (s *Simulation) checkDaemonUnlock() {
	if s.state.DaemonUnlocked || s.state.Credits < s.cfg.DaemonUnlockAt {
		return
	}
	s.state.DaemonUnlocked = true
	for _, p := range s.state.Processors {
		p.DaemonUnlocked = true
	}
	s.pushMessage("Daemon automation unlocked. Focus a processor and cycle its automation mode.")
	slog.Info("daemon automation unlocked", "credits", s.state.Credits)
}

// --- Read accessors ---

// State returns a deep copy of the game state.
func (s *Simulation) State() GameState {
	return s.state.Clone()
}

// Config returns the tuning the simulation runs with.
func (s *Simulation) Config() Config {
	return s.cfg
}

// Credits is the current balance.
func (s *Simulation) Credits() uint64 {
	return s.state.Credits
}

// Jobs returns a copy of the job board in display order.
func (s *Simulation) Jobs() []jobs.Job {
	return slices.Clone(s.state.Jobs)
}

// ProcessorCount is the fleet size.
func (s *Simulation) ProcessorCount() int {
	return len(s.state.Processors)
}

// Processors returns the display snapshot of every unit.
func (s *Simulation) Processors() []processor.Snapshot {
	out := make([]processor.Snapshot, len(s.state.Processors))
	for i, p := range s.state.Processors {
		out[i] = p.Snapshot()
	}
	return out
}

// Storage returns the data warehouse ledger.
func (s *Simulation) Storage() economy.Storage {
	return s.state.Storage
}

// JobSpawnProgress is the fraction of the spawn interval elapsed, 0..1.
func (s *Simulation) JobSpawnProgress() float64 {
	return min(s.jobSpawnTimer.Seconds()/s.cfg.JobSpawnInterval.Seconds(), 1)
}

// DayProgress is the fraction of the day cycle elapsed, 0..1.
func (s *Simulation) DayProgress() float64 {
	return min(s.dayTimer.Seconds()/s.cfg.DayLength.Seconds(), 1)
}

// TotalUpkeep is the fleet's daily upkeep.
func (s *Simulation) TotalUpkeep() uint64 {
	return economy.UpkeepTotal(s.state.Processors)
}

// TotalElectricityCost is the daily power bill at the last observed draw.
func (s *Simulation) TotalElectricityCost() uint64 {
	return economy.ElectricityCost(s.state.Processors)
}

// TotalPowerDraw sums the fleet's last observed draw.
func (s *Simulation) TotalPowerDraw() float64 {
	return economy.TotalPowerDraw(s.state.Processors)
}

// ThermalPasteActive reports whether the temporary cooling bonus applies.
func (s *Simulation) ThermalPasteActive() bool {
	return s.state.ThermalPasteMs > 0
}

// IsTagUnlocked reports whether tag is in the unlocked instruction list.
func (s *Simulation) IsTagUnlocked(tag string) bool {
	return slices.Contains(s.state.UnlockedTags, tag)
}

func (s *Simulation) processorAt(index int) (*processor.Processor, bool) {
	if index < 0 || index >= len(s.state.Processors) {
		return nil, false
	}
	return s.state.Processors[index], true
}
