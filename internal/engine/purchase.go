package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/array-sim/internal/processor"
	"github.com/talgya/array-sim/internal/store"
)

// NoSelection marks a purchase made without a focused processor.
const NoSelection = -1

// StoreEntry is one catalog line with its live price.
type StoreEntry struct {
	Index      int
	Item       store.Item
	Cost       uint64
	Available  bool
	Affordable bool
	Purchases  uint32
}

// Store lists the catalog priced against procIndex.
func (s *Simulation) Store(procIndex int) []StoreEntry {
	items := store.Items()
	out := make([]StoreEntry, len(items))
	for i, it := range items {
		cost, ok := store.Cost(it, s.costContext(i, procIndex))
		out[i] = StoreEntry{
			Index:      i,
			Item:       it,
			Cost:       cost,
			Available:  ok,
			Affordable: ok && s.state.Credits >= cost,
			Purchases:  s.state.StorePurchases[i],
		}
	}
	return out
}

// ItemCost is the current price of catalog item index, or false when it
// cannot be bought right now.
func (s *Simulation) ItemCost(index, procIndex int) (uint64, bool) {
	it, ok := store.Get(index)
	if !ok {
		return 0, false
	}
	return store.Cost(it, s.costContext(index, procIndex))
}

func (s *Simulation) costContext(index, procIndex int) store.Context {
	ctx := store.Context{
		Purchases:   s.state.StorePurchases[index],
		TagUnlocked: s.IsTagUnlocked,
	}
	if p, ok := s.processorAt(procIndex); ok {
		ctx.Processor = p
		ctx.ModelReplacementCost = s.modelReplacementCost(p.Name)
	}
	return ctx
}

func (s *Simulation) modelReplacementCost(name string) uint64 {
	var total uint64
	for _, p := range s.state.Processors {
		if p.Name == name {
			total += p.ReplacementCost()
		}
	}
	return total
}

// Purchase buys catalog item index, targeting procIndex when the item needs
// a processor. All checks run before the debit; a returned error means
// nothing changed.
func (s *Simulation) Purchase(index, procIndex int) error {
	it, ok := store.Get(index)
	if !ok {
		return s.rejectPurchase(index, store.ErrUnknownItem)
	}
	if it.Action == store.UnlockInstructionSet && s.IsTagUnlocked(it.Tag) {
		return s.rejectPurchase(index, &store.InstructionUnlockedError{Tag: it.Tag})
	}
	if it.MaxPurchases > 0 && s.state.StorePurchases[index] >= it.MaxPurchases {
		return s.rejectPurchase(index, &store.SoldOutError{Item: it.Name})
	}

	var target *processor.Processor
	if it.NeedsProcessor() {
		p, ok := s.processorAt(procIndex)
		if !ok {
			return s.rejectPurchase(index, store.ErrProcessorSelection)
		}
		target = p
	}
	if err := precondition(it, target, s.modelReplacementCost); err != nil {
		return s.rejectPurchase(index, err)
	}

	cost, ok := store.Cost(it, s.costContext(index, procIndex))
	if !ok {
		return s.rejectPurchase(index, store.ErrUnknownItem)
	}
	if s.state.Credits < cost {
		return s.rejectPurchase(index, &store.InsufficientCreditsError{Cost: cost})
	}

	s.state.Credits -= cost
	s.apply(it, target)
	if it.Counted() {
		s.state.StorePurchases[index]++
	}
	s.pushMessage(fmt.Sprintf("Purchased %s (-%s cr)", it.Name, credits(cost)))
	return nil
}

// precondition checks the per-processor and per-fleet gates of an item.
func precondition(it store.Item, p *processor.Processor, modelCost func(string) uint64) error {
	switch it.Action {
	case store.ReplaceProcessor:
		if p.IsFunctional() {
			return store.ErrProcessorHealthy
		}
	case store.ReplaceModel:
		if modelCost(p.Name) == 0 {
			return store.ErrNoMatchingProcessors
		}
	case store.UpgradeCooling:
		if p.CoolingLevel >= p.CoolingCap {
			return store.ErrUpgradeAtCap
		}
	case store.UpgradeHardening:
		if p.HardeningLevel >= processor.MaxHardeningLevel {
			return store.ErrUpgradeAtCap
		}
	case store.InstallDaemonFirmware:
		if p.DaemonUnlocked {
			return store.ErrDaemonFirmwareInstalled
		}
	}
	return nil
}

func (s *Simulation) apply(it store.Item, target *processor.Processor) {
	switch it.Action {
	case store.IncreaseSpeed:
		for _, p := range s.state.Processors {
			p.Speed += store.SpeedStep
		}
		s.pushMessage(fmt.Sprintf("Clock tuning applied: +%.2f speed to processors.", store.SpeedStep))
	case store.ImproveQuality:
		for _, p := range s.state.Processors {
			p.QualityBias += store.QualityStep
		}
		s.pushMessage("Calibration improved processor quality bias.")
	case store.ExpandStorage:
		s.state.Storage.Expand(store.StorageExpansion)
		s.pushMessage(fmt.Sprintf("Storage capacity expanded to %d units.", s.state.Storage.Capacity))
	case store.UnlockInstructionSet:
		s.state.UnlockedTags = append(s.state.UnlockedTags, it.Tag)
		for _, p := range s.state.Processors {
			p.AddTag(it.Tag)
		}
		s.pushMessage(fmt.Sprintf("Microcode integrated: processors now accept %s workloads.", it.Tag))
		s.pushMessage("Advanced job stream unlocked; watch for specialized contracts.")
	case store.UpgradeCooling:
		target.CoolingLevel++
		target.EnsureRuntimeDefaults()
		s.pushMessage(fmt.Sprintf("%s cooling upgraded to level %d.", target.Name, target.CoolingLevel))
	case store.UpgradeHardening:
		target.HardeningLevel++
		s.pushMessage(fmt.Sprintf("%s hardening increased to level %d.", target.Name, target.HardeningLevel))
	case store.ApplyThermalPaste:
		s.state.ThermalPasteMs = uint64(s.cfg.DayLength.Milliseconds())
		s.pushMessage("Thermal paste refreshed: cooling bonus active this cycle.")
	case store.InstallDaemonFirmware:
		target.DaemonUnlocked = true
		target.DaemonPenalty.Ease()
		s.pushMessage(fmt.Sprintf("%s daemon firmware installed. Automation penalties eased.", target.Name))
	case store.ReplaceProcessor:
		target.Replace()
		s.pushMessage(fmt.Sprintf("Replaced %s chassis. Unit restored to service.", target.Name))
	case store.ReplaceModel:
		n := 0
		for _, p := range s.state.Processors {
			if p.Name == target.Name && !p.IsFunctional() {
				p.Replace()
				n++
			}
		}
		s.pushMessage(fmt.Sprintf("Replaced %d units of %s. Fleet restored.", n, target.Name))
	}
}

func (s *Simulation) rejectPurchase(index int, err error) error {
	slog.Warn("purchase rejected", "item", index, "credits", s.state.Credits, "error", err)
	return err
}

// ReplaceProcessor buys a fresh chassis for the processor at index.
func (s *Simulation) ReplaceProcessor(index int) error {
	item, _ := store.IndexOf(store.ReplaceProcessor)
	return s.Purchase(item, index)
}

// ReplaceModel replaces every failed unit sharing the name of the processor
// at index.
func (s *Simulation) ReplaceModel(index int) error {
	item, _ := store.IndexOf(store.ReplaceModel)
	return s.Purchase(item, index)
}
