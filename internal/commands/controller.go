package commands

import (
	"fmt"

	"github.com/talgya/array-sim/internal/engine"
	"github.com/talgya/array-sim/internal/jobs"
	"github.com/talgya/array-sim/internal/store"
)

// Focus is the pane that navigation and Select act on.
type Focus uint8

const (
	FocusOnJobs Focus = iota
	FocusOnProcessors
)

func (f Focus) String() string {
	if f == FocusOnProcessors {
		return "processors"
	}
	return "jobs"
}

// Controller holds the player's selection and the single pending job slot.
// It must only be used from the goroutine that owns the Simulation.
type Controller struct {
	Focus             Focus
	SelectedJob       int
	SelectedProcessor int
	SelectedStoreItem int
	StoreOpen         bool
	Pending           *jobs.Job
}

// NewController starts with the job board focused.
func NewController() *Controller {
	return &Controller{Focus: FocusOnJobs}
}

// Apply runs cmd against sim and reports whether the player asked to quit.
func (c *Controller) Apply(sim *engine.Simulation, cmd Command) bool {
	if cmd.Kind == Quit {
		return true
	}
	if c.StoreOpen {
		c.applyStore(sim, cmd)
		return false
	}

	switch cmd.Kind {
	case Cancel:
		c.Release(sim)
	case ToggleStore:
		c.toggleStore()
	case CycleDaemon, ToggleCooling:
		idx, ok := c.focusedProcessor(sim, "Focus a processor to adjust automation.")
		if !ok {
			return false
		}
		if cmd.Kind == ToggleCooling {
			sim.ToggleHonorCooling(idx)
		} else {
			sim.CycleDaemonMode(idx)
		}
	case Replace, ReplaceModel:
		idx, ok := c.focusedProcessor(sim, "Focus a processor to replace hardware.")
		if !ok {
			return false
		}
		var err error
		if cmd.Kind == ReplaceModel {
			err = sim.ReplaceModel(idx)
		} else {
			err = sim.ReplaceProcessor(idx)
		}
		if err != nil {
			sim.AddMessage(fmt.Sprintf("Replacement failed: %v", err))
		}
	case NextFocus:
		if c.Focus == FocusOnJobs {
			c.Focus = FocusOnProcessors
		} else {
			c.Focus = FocusOnJobs
		}
	case FocusProcessors:
		c.Focus = FocusOnProcessors
	case FocusJobs:
		c.Focus = FocusOnJobs
	case Up:
		c.move(sim, -1)
	case Down:
		c.move(sim, 1)
	case SelectIndex:
		c.pick(sim, cmd.Index)
	case Select:
		c.selectFocused(sim)
	}
	return false
}

// Release returns the pending job to the board, if any.
func (c *Controller) Release(sim *engine.Simulation) {
	if c.Pending == nil {
		return
	}
	sim.ReturnJob(*c.Pending)
	c.Pending = nil
	c.SelectedJob = clampIndex(c.SelectedJob, len(sim.Jobs()))
}

func (c *Controller) toggleStore() {
	c.StoreOpen = !c.StoreOpen
	if c.StoreOpen {
		c.SelectedStoreItem = 0
	}
}

func (c *Controller) applyStore(sim *engine.Simulation, cmd Command) {
	switch cmd.Kind {
	case Cancel, ToggleStore:
		c.toggleStore()
	case Up:
		if c.SelectedStoreItem > 0 {
			c.SelectedStoreItem--
		}
	case Down:
		if c.SelectedStoreItem+1 < store.Len() {
			c.SelectedStoreItem++
		}
	case SelectIndex:
		c.SelectedStoreItem = clampIndex(cmd.Index, store.Len())
	case Select:
		procIndex := engine.NoSelection
		if n := sim.ProcessorCount(); n > 0 {
			procIndex = min(c.SelectedProcessor, n-1)
		}
		if err := sim.Purchase(c.SelectedStoreItem, procIndex); err != nil {
			sim.AddMessage(fmt.Sprintf("Purchase failed: %v", err))
		}
	}
}

func (c *Controller) focusedProcessor(sim *engine.Simulation, hint string) (int, bool) {
	if c.Focus != FocusOnProcessors {
		sim.AddMessage(hint)
		return 0, false
	}
	n := sim.ProcessorCount()
	if n == 0 {
		sim.AddMessage("No processors available.")
		return 0, false
	}
	return min(c.SelectedProcessor, n-1), true
}

// move steps the focused selection, wrapping at both ends.
func (c *Controller) move(sim *engine.Simulation, delta int) {
	switch c.Focus {
	case FocusOnJobs:
		c.SelectedJob = wrapIndex(c.SelectedJob+delta, len(sim.Jobs()))
	case FocusOnProcessors:
		c.SelectedProcessor = wrapIndex(c.SelectedProcessor+delta, sim.ProcessorCount())
	}
}

func (c *Controller) pick(sim *engine.Simulation, index int) {
	switch c.Focus {
	case FocusOnJobs:
		c.SelectedJob = clampIndex(index, len(sim.Jobs()))
	case FocusOnProcessors:
		c.SelectedProcessor = clampIndex(index, sim.ProcessorCount())
	}
}

func (c *Controller) selectFocused(sim *engine.Simulation) {
	if c.Focus == FocusOnJobs {
		if c.Pending != nil {
			sim.AddMessage("A job is already awaiting assignment.")
			return
		}
		job, ok := sim.TakeJob(c.SelectedJob)
		if !ok {
			sim.AddMessage("No jobs available to queue.")
			return
		}
		c.Pending = &job
		c.SelectedJob = clampIndex(c.SelectedJob, len(sim.Jobs()))
		sim.AddMessage(fmt.Sprintf("%s queued for assignment.", job.Name))
		return
	}

	n := sim.ProcessorCount()
	if n == 0 {
		sim.AddMessage("No processors available.")
		return
	}
	idx := min(c.SelectedProcessor, n-1)
	if c.Pending == nil {
		if sim.AcceptAssist(idx) {
			c.SelectedJob = clampIndex(c.SelectedJob, len(sim.Jobs()))
		}
		return
	}
	if err := sim.AssignJob(*c.Pending, idx, false); err != nil {
		sim.AddMessage(fmt.Sprintf("Assignment failed: %v", err))
		return
	}
	c.Pending = nil
}

func wrapIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	return min(i, n-1)
}
