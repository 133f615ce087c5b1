package engine

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/array-sim/internal/jobs"
	"github.com/talgya/array-sim/internal/processor"
)

func withMode(sim *Simulation, mode processor.DaemonMode) *processor.Processor {
	sim.state.DaemonUnlocked = true
	p := sim.state.Processors[0]
	p.DaemonUnlocked = true
	p.DaemonMode = mode
	return p
}

func addUnit(sim *Simulation, name string) *processor.Processor {
	p := processor.Starter()
	p.Name = name
	p.DaemonUnlocked = true
	sim.state.Processors = append(sim.state.Processors, p)
	return p
}

func workingJob(t *testing.T, p *processor.Processor) *processor.Working {
	t.Helper()
	w, ok := p.Status.(*processor.Working)
	require.True(t, ok, "expected %s to be working", p.Name)
	return w
}

func TestAutoPassPicksBestRate(t *testing.T) {
	sim := newTestSim()
	p := withMode(sim, processor.DaemonAuto)
	slow, fast := testJob(1, 9000, 70), testJob(2, 4000, 140)
	sim.state.Jobs = []jobs.Job{slow, fast}

	sim.runAutoPass()
	w := workingJob(t, p)
	assert.Equal(t, fast.ID, w.Job.ID)
	assert.Equal(t, uint64(4400), w.TotalMs, "daemon penalty stretches duration")
	require.NotNil(t, w.Penalty)
	assert.Equal(t, processor.DefaultPenalty(), *w.Penalty)
	assert.Equal(t, []jobs.Job{slow}, sim.Jobs())
	assert.True(t, hasMessage(sim, "automation tax"))
}

func TestAutoPassTiesKeepBoardOrder(t *testing.T) {
	sim := newTestSim()
	p := withMode(sim, processor.DaemonAuto)
	sim.state.Jobs = []jobs.Job{testJob(1, 5000, 100), testJob(2, 5000, 100)}

	sim.runAutoPass()
	assert.Equal(t, uint64(1), workingJob(t, p).Job.ID)
}

func TestAutoPassOrdersByPriorityThenSpeed(t *testing.T) {
	sim := newTestSim()
	withMode(sim, processor.DaemonAuto)
	second := addUnit(sim, "Model B")
	second.DaemonMode = processor.DaemonAuto
	second.DaemonPriority = 1
	sim.state.Jobs = []jobs.Job{testJob(1, 5000, 100)}

	sim.runAutoPass()
	assert.True(t, sim.state.Processors[0].IsIdle())
	assert.Equal(t, uint64(1), workingJob(t, second).Job.ID)

	sim = newTestSim()
	withMode(sim, processor.DaemonAuto)
	quick := addUnit(sim, "Model C")
	quick.DaemonMode = processor.DaemonAuto
	quick.Speed = 1.5
	sim.state.Jobs = []jobs.Job{testJob(1, 5000, 100)}

	sim.runAutoPass()
	assert.True(t, sim.state.Processors[0].IsIdle())
	workingJob(t, quick)
}

func TestAutoPassSkipsUnreliableJobs(t *testing.T) {
	sim := newTestSim()
	p := withMode(sim, processor.DaemonAuto)
	p.ReliabilityBase = 0.4 // 0.28 under load
	sim.state.Jobs = []jobs.Job{testJob(1, 5000, 100)}

	sim.runAutoPass()
	assert.True(t, p.IsIdle())
	assert.Len(t, sim.Jobs(), 1)
}

func TestAutoPassHonorsCoolingMinimum(t *testing.T) {
	sim := newTestSim()
	p := withMode(sim, processor.DaemonAuto)
	p.AddTag(jobs.TagSIMD)
	p.RequiresCoolingMin = 1
	simd := testJob(1, 5000, 200)
	simd.Tag = jobs.TagSIMD
	sim.state.Jobs = []jobs.Job{simd}

	sim.runAutoPass()
	assert.True(t, p.IsIdle())

	sim.ToggleHonorCooling(0)
	assert.False(t, p.HonorCoolingMins)
	assert.True(t, hasMessage(sim, "will override cooling minimums"))

	sim.runAutoPass()
	assert.Equal(t, simd.ID, workingJob(t, p).Job.ID)
}

func TestAutoPassExemptsGeneralFromCoolingMinimum(t *testing.T) {
	sim := newTestSim()
	p := withMode(sim, processor.DaemonAuto)
	p.RequiresCoolingMin = 1
	sim.state.Jobs = []jobs.Job{testJob(1, 5000, 100)}

	sim.runAutoPass()
	workingJob(t, p)
}

func TestAutoPassIgnoresOtherModes(t *testing.T) {
	sim := newTestSim()
	p := withMode(sim, processor.DaemonAssist)
	sim.state.Jobs = []jobs.Job{testJob(1, 5000, 100)}

	sim.runAutoPass()
	assert.True(t, p.IsIdle())

	p.DaemonMode = processor.DaemonAuto
	p.DaemonUnlocked = false
	sim.runAutoPass()
	assert.True(t, p.IsIdle())
}

func TestAssistSuggestionAndAccept(t *testing.T) {
	sim := newTestSim()
	p := withMode(sim, processor.DaemonAssist)
	slow, fast := testJob(1, 9000, 70), testJob(2, 4000, 140)
	sim.state.Jobs = []jobs.Job{slow, fast}

	sug, ok := sim.AssistSuggestion(0)
	require.True(t, ok)
	assert.Equal(t, 1, sug.JobIndex)
	assert.InDelta(t, 4.0, sug.ETASeconds, 1e-9)
	assert.InDelta(t, 0.875, sug.Reliability, 1e-9)
	assert.InDelta(t, 1.0, sug.Heat, 1e-9)

	require.True(t, sim.AcceptAssist(0))
	w := workingJob(t, p)
	assert.Equal(t, fast.ID, w.Job.ID)
	assert.Nil(t, w.Penalty)
	assert.Equal(t, uint64(4000), w.TotalMs)
	assert.Equal(t, []jobs.Job{slow}, sim.Jobs())

	_, ok = sim.AssistSuggestion(0)
	assert.False(t, ok, "busy units get no suggestion")
}

func TestAcceptAssistRejections(t *testing.T) {
	sim := newTestSim()
	sim.state.Jobs = []jobs.Job{testJob(1, 5000, 100)}

	assert.False(t, sim.AcceptAssist(5))
	assert.True(t, hasMessage(sim, "Select a valid processor."))

	assert.False(t, sim.AcceptAssist(0))
	assert.True(t, hasMessage(sim, "is not running Assist automation"))

	p := withMode(sim, processor.DaemonAssist)
	p.Status = processor.Destroyed{}
	assert.False(t, sim.AcceptAssist(0))
	assert.True(t, hasMessage(sim, "is offline"))

	p.Status = processor.Idle{}
	sim.state.Jobs = nil
	assert.False(t, sim.AcceptAssist(0))
	assert.True(t, hasMessage(sim, "has no suggestions ready"))
}

func TestRejectedBoardAssignmentKeepsSlot(t *testing.T) {
	sim := newTestSim()
	board := []jobs.Job{testJob(1, 5000, 100), testJob(2, 5000, 100), testJob(3, 5000, 100)}
	sim.state.Jobs = slices.Clone(board)
	require.NoError(t, sim.AssignJob(testJob(9, 5000, 100), 0, false))

	err := sim.assignFromBoard(1, 0, true)
	assert.ErrorIs(t, err, processor.ErrProcessorBusy)
	assert.Equal(t, board, sim.Jobs())

	sim.state.Processors[0].Status = processor.Idle{}
	simd := testJob(4, 5000, 100)
	simd.Tag = jobs.TagSIMD
	sim.state.Jobs = append(sim.state.Jobs, simd)
	var incompatible *processor.IncompatibleInstructionError
	assert.ErrorAs(t, sim.assignFromBoard(3, 0, false), &incompatible)
	assert.Equal(t, simd, sim.Jobs()[3])
	assert.True(t, sim.state.Processors[0].IsIdle())

	assert.ErrorIs(t, sim.assignFromBoard(7, 0, false), errJobGone)
	assert.Len(t, sim.Jobs(), 4)
}

func TestCycleDaemonMode(t *testing.T) {
	sim := newTestSim()
	p := sim.state.Processors[0]

	sim.CycleDaemonMode(0)
	assert.Equal(t, processor.DaemonOff, p.DaemonMode)
	assert.True(t, hasMessage(sim, "lacks daemon firmware"))

	// Firmware alone is not enough before the global unlock.
	p.DaemonUnlocked = true
	sim.CycleDaemonMode(0)
	assert.Equal(t, processor.DaemonOff, p.DaemonMode)

	sim.state.DaemonUnlocked = true
	for _, want := range []processor.DaemonMode{processor.DaemonAssist, processor.DaemonAuto, processor.DaemonOff} {
		sim.CycleDaemonMode(0)
		assert.Equal(t, want, p.DaemonMode)
	}
	assert.True(t, hasMessage(sim, "automation mode -> Off."))

	p.Status = processor.BurntOut{}
	sim.CycleDaemonMode(0)
	assert.Equal(t, processor.DaemonOff, p.DaemonMode)
	assert.True(t, hasMessage(sim, "cannot change automation mode"))
}

func TestAutoPassRunsInsideUpdate(t *testing.T) {
	sim := newTestSim()
	p := withMode(sim, processor.DaemonAuto)

	sim.Update(DefaultConfig().JobSpawnInterval)
	assert.Empty(t, sim.Jobs())
	workingJob(t, p)
}
