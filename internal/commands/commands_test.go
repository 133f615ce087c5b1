package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/array-sim/internal/engine"
	"github.com/talgya/array-sim/internal/entropy"
	"github.com/talgya/array-sim/internal/processor"
	"github.com/talgya/array-sim/internal/store"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		want Command
	}{
		{"q", Command{Kind: Quit}},
		{"Q", Command{Kind: Quit}},
		{"QUIT", Command{Kind: Quit}},
		{"d", Command{Kind: CycleDaemon}},
		{"D", Command{Kind: ToggleCooling}},
		{"r", Command{Kind: Replace}},
		{"R", Command{Kind: ReplaceModel}},
		{"  j ", Command{Kind: Down}},
		{"", Command{Kind: Select}},
		{"pick 3", Command{Kind: SelectIndex, Index: 3}},
		{"store", Command{Kind: ToggleStore}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.line)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("launch")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = Parse("pick")
	assert.Error(t, err)
	_, err = Parse("pick -1")
	assert.Error(t, err)
	_, err = Parse("pick x")
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "replace-model", ReplaceModel.String())
	assert.Equal(t, "kind(200)", Kind(200).String())
}

func newSim(t *testing.T, jobsOnBoard int) *engine.Simulation {
	t.Helper()
	sim := engine.NewSimulation(engine.DefaultConfig(), entropy.NewSeeded(7))
	sim.Update(time.Duration(jobsOnBoard) * engine.DefaultConfig().JobSpawnInterval)
	require.Len(t, sim.Jobs(), jobsOnBoard)
	return sim
}

func run(c *Controller, sim *engine.Simulation, kinds ...Kind) {
	for _, k := range kinds {
		c.Apply(sim, Command{Kind: k})
	}
}

func TestQueueAndAssign(t *testing.T) {
	sim := newSim(t, 2)
	c := NewController()
	want := sim.Jobs()[1]

	run(c, sim, Down, Select)
	require.NotNil(t, c.Pending)
	assert.Equal(t, want, *c.Pending)
	assert.Len(t, sim.Jobs(), 1)
	assert.Zero(t, c.SelectedJob, "selection clamps to the shorter board")

	run(c, sim, Select)
	assert.Contains(t, sim.Messages()[len(sim.Messages())-1], "already awaiting assignment")

	run(c, sim, NextFocus, Select)
	assert.Nil(t, c.Pending)
	assert.Equal(t, processor.KindWorking, sim.Processors()[0].Status)
}

func TestFailedAssignmentKeepsPending(t *testing.T) {
	sim := newSim(t, 2)
	c := NewController()

	run(c, sim, Select, FocusProcessors, Select)
	require.Nil(t, c.Pending)

	run(c, sim, FocusJobs, Select, FocusProcessors, Select)
	require.NotNil(t, c.Pending, "busy processor leaves the job pending")
	assert.Contains(t, sim.Messages()[len(sim.Messages())-1], "Assignment failed")

	run(c, sim, Cancel)
	assert.Nil(t, c.Pending)
	assert.Len(t, sim.Jobs(), 1)
}

func TestReleaseReturnsPendingToFront(t *testing.T) {
	sim := newSim(t, 3)
	c := NewController()
	c.SelectedJob = 2
	run(c, sim, Select)
	job := *c.Pending

	c.Release(sim)
	assert.Nil(t, c.Pending)
	assert.Equal(t, job, sim.Jobs()[0])

	c.Release(sim)
	assert.Len(t, sim.Jobs(), 3)
}

func TestMoveWraps(t *testing.T) {
	sim := newSim(t, 3)
	c := NewController()

	run(c, sim, Up)
	assert.Equal(t, 2, c.SelectedJob)
	run(c, sim, Down)
	assert.Equal(t, 0, c.SelectedJob)

	c.Apply(sim, Command{Kind: SelectIndex, Index: 9})
	assert.Equal(t, 2, c.SelectedJob)
}

func TestProcessorCommandsNeedFocus(t *testing.T) {
	sim := newSim(t, 0)
	c := NewController()

	run(c, sim, CycleDaemon)
	assert.Contains(t, sim.Messages()[len(sim.Messages())-1], "Focus a processor")

	run(c, sim, FocusProcessors, Replace)
	assert.Contains(t, sim.Messages()[len(sim.Messages())-1], "Replacement failed")

	run(c, sim, ToggleCooling)
	assert.False(t, sim.State().Processors[0].HonorCoolingMins)
}

func TestStoreMode(t *testing.T) {
	sim := newSim(t, 0)
	c := NewController()

	run(c, sim, ToggleStore)
	require.True(t, c.StoreOpen)

	run(c, sim, Up)
	assert.Zero(t, c.SelectedStoreItem)
	for range store.Len() + 2 {
		run(c, sim, Down)
	}
	assert.Equal(t, store.Len()-1, c.SelectedStoreItem)

	// Navigation keys do not leak to the board while shopping.
	run(c, sim, NextFocus)
	assert.Equal(t, FocusOnJobs, c.Focus)

	idx, _ := store.IndexOf(store.IncreaseSpeed)
	c.Apply(sim, Command{Kind: SelectIndex, Index: idx})
	run(c, sim, Select)
	assert.Equal(t, uint64(0), sim.Credits())
	assert.Contains(t, sim.Messages()[len(sim.Messages())-1], "Purchased Clock Tuning")

	run(c, sim, Select)
	assert.Contains(t, sim.Messages()[len(sim.Messages())-1], "Purchase failed: not enough credits (requires 165)")

	run(c, sim, Cancel)
	assert.False(t, c.StoreOpen)
}

func TestQuit(t *testing.T) {
	sim := newSim(t, 0)
	c := NewController()
	assert.True(t, c.Apply(sim, Command{Kind: Quit}))
	c.StoreOpen = true
	assert.True(t, c.Apply(sim, Command{Kind: Quit}))
	assert.False(t, c.Apply(sim, Command{Kind: Status}))
}
