// Package store is the static upgrade catalog: what can be bought, what it
// costs at the current level, and the errors a purchase can fail with.
package store

import (
	"github.com/talgya/array-sim/internal/jobs"
	"github.com/talgya/array-sim/internal/processor"
)

// Action is the effect a catalog entry applies when purchased.
type Action uint8

const (
	IncreaseSpeed Action = iota
	ImproveQuality
	ExpandStorage
	UnlockInstructionSet
	UpgradeCooling
	UpgradeHardening
	ApplyThermalPaste
	InstallDaemonFirmware
	ReplaceProcessor
	ReplaceModel
)

// Effect magnitudes.
const (
	SpeedStep         = 0.05
	QualityStep       = 1
	StorageExpansion  = 80
	ThermalPasteLevel = 1
)

// Item is one catalog entry. Tag is set only for UnlockInstructionSet.
type Item struct {
	Name         string
	Description  string
	BaseCost     uint64
	CostStep     uint64
	Action       Action
	Tag          string
	MaxPurchases uint32 // 0 means unlimited
}

// NeedsProcessor reports whether the item targets a selected unit.
func (it Item) NeedsProcessor() bool {
	switch it.Action {
	case UpgradeCooling, UpgradeHardening, InstallDaemonFirmware, ReplaceProcessor, ReplaceModel:
		return true
	}
	return false
}

// Counted reports whether purchases increment the item's counter.
// Replacements are uncapped and never counted.
func (it Item) Counted() bool {
	return it.Action != ReplaceProcessor && it.Action != ReplaceModel
}

var catalog = []Item{
	{
		Name:        "Clock Tuning",
		Description: "Trim execution cycles for all processors (+0.05 speed each purchase).",
		BaseCost:    120,
		CostStep:    45,
		Action:      IncreaseSpeed,
	},
	{
		Name:        "Precision Calibration",
		Description: "Improve processor quality bias (+1 each purchase).",
		BaseCost:    140,
		CostStep:    60,
		Action:      ImproveQuality,
	},
	{
		Name:        "Storage Array Expansion",
		Description: "Increase data capacity by +80 units.",
		BaseCost:    100,
		CostStep:    55,
		Action:      ExpandStorage,
	},
	{
		Name:         "Instruction Microcode",
		Description:  "Install SIMD microcode; unlocks advanced job stream and adds support to processors.",
		BaseCost:     260,
		Action:       UnlockInstructionSet,
		Tag:          jobs.TagSIMD,
		MaxPurchases: 1,
	},
	{
		Name:        "Cooling Kit",
		Description: "Install additional cooling on the selected processor (+1 level up to cap).",
		BaseCost:    90,
		CostStep:    35,
		Action:      UpgradeCooling,
	},
	{
		Name:        "Hardening Module",
		Description: "Radiation shielding and error correction for the selected processor (+1 hardening).",
		BaseCost:    140,
		CostStep:    55,
		Action:      UpgradeHardening,
	},
	{
		Name:        "Service-Grade Thermal Paste",
		Description: "Refreshes thermal interface material for the day (temporary +1 cooling level).",
		BaseCost:    60,
		CostStep:    20,
		Action:      ApplyThermalPaste,
	},
	{
		Name:        "Daemon Microcode",
		Description: "Unlock automation firmware for the selected processor and ease penalties.",
		BaseCost:    180,
		CostStep:    80,
		Action:      InstallDaemonFirmware,
	},
	{
		Name:        "Replace Selected Unit",
		Description: "Swap the highlighted processor chassis at the model's service rate.",
		Action:      ReplaceProcessor,
	},
	{
		Name:        "Replace Model Fleet",
		Description: "Replace all burnt or destroyed units of the selected model at bulk rate.",
		Action:      ReplaceModel,
	},
}

// Items returns a copy of the catalog in display order.
func Items() []Item {
	out := make([]Item, len(catalog))
	copy(out, catalog)
	return out
}

// Len is the catalog size.
func Len() int { return len(catalog) }

// Get returns the item at index.
func Get(index int) (Item, bool) {
	if index < 0 || index >= len(catalog) {
		return Item{}, false
	}
	return catalog[index], true
}

// IndexOf returns the first catalog index with action.
func IndexOf(action Action) (int, bool) {
	for i, it := range catalog {
		if it.Action == action {
			return i, true
		}
	}
	return 0, false
}

// Context is the slice of game state a cost depends on.
type Context struct {
	Purchases uint32
	// Processor is the selected unit, nil when nothing is selected.
	Processor *processor.Processor
	// ModelReplacementCost is the summed replacement cost of every
	// non-functional unit sharing the selected unit's name.
	ModelReplacementCost uint64
	TagUnlocked          func(tag string) bool
}

// Cost is the current price of it, or false when it cannot be bought: sold
// out, at cap, already unlocked, target healthy, or no selection given.
func Cost(it Item, ctx Context) (uint64, bool) {
	if it.NeedsProcessor() && ctx.Processor == nil {
		return 0, false
	}
	p := ctx.Processor

	switch it.Action {
	case ReplaceProcessor:
		cost := p.ReplacementCost()
		return cost, cost > 0
	case ReplaceModel:
		return ctx.ModelReplacementCost, ctx.ModelReplacementCost > 0
	case UpgradeCooling:
		if p.CoolingLevel >= p.CoolingCap {
			return 0, false
		}
		return it.BaseCost + it.CostStep*uint64(p.CoolingLevel), true
	case UpgradeHardening:
		if p.HardeningLevel >= processor.MaxHardeningLevel {
			return 0, false
		}
		return it.BaseCost + it.CostStep*uint64(p.HardeningLevel), true
	case InstallDaemonFirmware:
		if p.DaemonUnlocked {
			return 0, false
		}
		return it.BaseCost + it.CostStep*uint64(max(p.DaemonPriority, 0)), true
	}

	if it.MaxPurchases > 0 && ctx.Purchases >= it.MaxPurchases {
		return 0, false
	}
	if it.Action == UnlockInstructionSet && ctx.TagUnlocked != nil && ctx.TagUnlocked(it.Tag) {
		return 0, false
	}
	return it.BaseCost + it.CostStep*uint64(ctx.Purchases), true
}
