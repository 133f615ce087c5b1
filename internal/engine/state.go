package engine

import (
	"slices"

	"github.com/talgya/array-sim/internal/economy"
	"github.com/talgya/array-sim/internal/jobs"
	"github.com/talgya/array-sim/internal/processor"
	"github.com/talgya/array-sim/internal/store"
)

// GameState is everything a save file holds.
type GameState struct {
	Credits        uint64
	Processors     []*processor.Processor
	Jobs           []jobs.Job
	Storage        economy.Storage
	DaemonUnlocked bool
	// DaemonEnabled is the legacy fleet-wide toggle. Load clears it; automation
	// is per processor.
	DaemonEnabled  bool
	ThermalPasteMs uint64
	JobCounter     uint64
	UnlockedTags   []string
	StorePurchases []uint32
}

// NewGameState returns a fresh game: one starter processor, an empty board.
func NewGameState(cfg Config) GameState {
	return GameState{
		Credits:        cfg.StartingCredits,
		Processors:     []*processor.Processor{processor.Starter()},
		Storage:        economy.NewStorage(cfg.StartingStorage),
		UnlockedTags:   []string{jobs.TagGeneral},
		StorePurchases: make([]uint32, store.Len()),
	}
}

// Clone returns a deep copy safe to hand to readers.
func (gs GameState) Clone() GameState {
	out := gs
	out.Processors = make([]*processor.Processor, len(gs.Processors))
	for i, p := range gs.Processors {
		out.Processors[i] = cloneProcessor(p)
	}
	out.Jobs = slices.Clone(gs.Jobs)
	out.UnlockedTags = slices.Clone(gs.UnlockedTags)
	out.StorePurchases = slices.Clone(gs.StorePurchases)
	return out
}

func cloneProcessor(p *processor.Processor) *processor.Processor {
	c := *p
	c.InstructionSet = slices.Clone(p.InstructionSet)
	if p.PowerDrawMod != nil {
		c.PowerDrawMod = make(map[string]float64, len(p.PowerDrawMod))
		for k, v := range p.PowerDrawMod {
			c.PowerDrawMod[k] = v
		}
	}
	if p.DaemonAffinity != nil {
		c.DaemonAffinity = make(map[string]float64, len(p.DaemonAffinity))
		for k, v := range p.DaemonAffinity {
			c.DaemonAffinity[k] = v
		}
	}
	if w, ok := p.Status.(*processor.Working); ok {
		wc := *w
		if w.Penalty != nil {
			pen := *w.Penalty
			wc.Penalty = &pen
		}
		c.Status = &wc
	}
	return &c
}

// reconcile repairs a loaded state so it is consistent with the catalog and
// the unlocked tag list.
func (gs *GameState) reconcile() {
	gs.DaemonEnabled = false
	if len(gs.StorePurchases) < store.Len() {
		grown := make([]uint32, store.Len())
		copy(grown, gs.StorePurchases)
		gs.StorePurchases = grown
	}
	if !slices.Contains(gs.UnlockedTags, jobs.TagGeneral) {
		gs.UnlockedTags = slices.Insert(gs.UnlockedTags, 0, jobs.TagGeneral)
	}
	for _, p := range gs.Processors {
		p.EnsureRuntimeDefaults()
		if gs.DaemonUnlocked {
			p.DaemonUnlocked = true
		}
		for _, tag := range gs.UnlockedTags {
			p.AddTag(tag)
		}
	}
}
