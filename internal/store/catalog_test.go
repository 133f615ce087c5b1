package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/array-sim/internal/jobs"
	"github.com/talgya/array-sim/internal/processor"
)

func item(t *testing.T, action Action) Item {
	t.Helper()
	idx, ok := IndexOf(action)
	require.True(t, ok)
	it, ok := Get(idx)
	require.True(t, ok)
	return it
}

func TestCatalogOrder(t *testing.T) {
	items := Items()
	require.Len(t, items, 10)
	assert.Equal(t, "Clock Tuning", items[0].Name)
	assert.Equal(t, ReplaceModel, items[9].Action)

	_, ok := Get(Len())
	assert.False(t, ok)
	_, ok = Get(-1)
	assert.False(t, ok)
}

func TestFleetItemCostScalesWithPurchases(t *testing.T) {
	it := item(t, IncreaseSpeed)
	cost, ok := Cost(it, Context{})
	assert.True(t, ok)
	assert.Equal(t, uint64(120), cost)

	cost, ok = Cost(it, Context{Purchases: 2})
	assert.True(t, ok)
	assert.Equal(t, uint64(210), cost)
}

func TestMicrocodeSoldOutAndUnlocked(t *testing.T) {
	it := item(t, UnlockInstructionSet)
	assert.Equal(t, jobs.TagSIMD, it.Tag)

	cost, ok := Cost(it, Context{TagUnlocked: func(string) bool { return false }})
	assert.True(t, ok)
	assert.Equal(t, uint64(260), cost)

	_, ok = Cost(it, Context{Purchases: 1})
	assert.False(t, ok)

	_, ok = Cost(it, Context{TagUnlocked: func(tag string) bool { return tag == jobs.TagSIMD }})
	assert.False(t, ok)
}

func TestProcessorItemsRequireSelection(t *testing.T) {
	for _, action := range []Action{UpgradeCooling, UpgradeHardening, InstallDaemonFirmware, ReplaceProcessor, ReplaceModel} {
		_, ok := Cost(item(t, action), Context{})
		assert.False(t, ok, "action %d", action)
	}
}

func TestCoolingCostAndCap(t *testing.T) {
	it := item(t, UpgradeCooling)
	p := processor.Starter()
	p.CoolingLevel = 2

	cost, ok := Cost(it, Context{Processor: p})
	assert.True(t, ok)
	assert.Equal(t, uint64(160), cost)

	p.CoolingLevel = p.CoolingCap
	_, ok = Cost(it, Context{Processor: p})
	assert.False(t, ok)
}

func TestHardeningCap(t *testing.T) {
	it := item(t, UpgradeHardening)
	p := processor.Starter()
	p.HardeningLevel = processor.MaxHardeningLevel
	_, ok := Cost(it, Context{Processor: p})
	assert.False(t, ok)
}

func TestFirmwareCost(t *testing.T) {
	it := item(t, InstallDaemonFirmware)
	p := processor.Starter()
	p.DaemonPriority = 2
	cost, ok := Cost(it, Context{Processor: p})
	assert.True(t, ok)
	assert.Equal(t, uint64(340), cost)

	p.DaemonPriority = -4
	cost, _ = Cost(it, Context{Processor: p})
	assert.Equal(t, uint64(180), cost)

	p.DaemonUnlocked = true
	_, ok = Cost(it, Context{Processor: p})
	assert.False(t, ok)
}

func TestReplacementCosts(t *testing.T) {
	p := processor.Starter()
	_, ok := Cost(item(t, ReplaceProcessor), Context{Processor: p})
	assert.False(t, ok, "healthy unit cannot be replaced")

	p.Status = processor.BurntOut{}
	cost, ok := Cost(item(t, ReplaceProcessor), Context{Processor: p})
	assert.True(t, ok)
	assert.Equal(t, uint64(63), cost)

	_, ok = Cost(item(t, ReplaceModel), Context{Processor: p})
	assert.False(t, ok)
	cost, ok = Cost(item(t, ReplaceModel), Context{Processor: p, ModelReplacementCost: 126})
	assert.True(t, ok)
	assert.Equal(t, uint64(126), cost)
}

func TestItemFlags(t *testing.T) {
	assert.False(t, item(t, ReplaceModel).Counted())
	assert.False(t, item(t, ReplaceProcessor).Counted())
	assert.True(t, item(t, ApplyThermalPaste).Counted())
	assert.False(t, item(t, ExpandStorage).NeedsProcessor())
}

func TestErrorMessages(t *testing.T) {
	assert.EqualError(t, &InsufficientCreditsError{Cost: 63}, "not enough credits (requires 63)")
	assert.EqualError(t, &SoldOutError{Item: "Instruction Microcode"}, "Instruction Microcode is sold out")
	assert.EqualError(t, &InstructionUnlockedError{Tag: "SIMD"}, "SIMD instruction set already unlocked")
}
