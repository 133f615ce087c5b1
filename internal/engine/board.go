package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/talgya/array-sim/internal/economy"
	"github.com/talgya/array-sim/internal/jobs"
	"github.com/talgya/array-sim/internal/processor"
)

// Tag weights for the job spawn draw.
const (
	generalTagWeight  = 4
	advancedTagWeight = 2
)

var errJobGone = errors.New("job is no longer on the board")

// TakeJob removes the job at index from the board.
func (s *Simulation) TakeJob(index int) (jobs.Job, bool) {
	if index < 0 || index >= len(s.state.Jobs) {
		return jobs.Job{}, false
	}
	job := s.state.Jobs[index]
	s.state.Jobs = slices.Delete(s.state.Jobs, index, index+1)
	return job, true
}

// ReturnJob puts an unassigned job back at the front of the board. A full
// board discards it.
func (s *Simulation) ReturnJob(job jobs.Job) {
	if len(s.state.Jobs) >= s.cfg.MaxJobs {
		s.pushMessage("Job board full; discarded returned job.")
		return
	}
	s.state.Jobs = slices.Insert(s.state.Jobs, 0, job)
}

func (s *Simulation) spawnJob() {
	if len(s.state.Jobs) >= s.cfg.MaxJobs {
		return
	}
	s.state.JobCounter++
	tag := s.chooseJobTag()
	job := jobs.Generate(s.state.JobCounter, tag, s.rng)
	s.state.Jobs = append(s.state.Jobs, job)
	s.pushMessage(fmt.Sprintf("New job posted: %s [%s]", job.Name, tag))
}

// chooseJobTag draws from the unlocked tags that at least one processor
// supports, weighting the general stream over advanced ones.
func (s *Simulation) chooseJobTag() string {
	var pool []string
	for _, tag := range s.state.UnlockedTags {
		if !s.anySupports(tag) {
			continue
		}
		weight := advancedTagWeight
		if tag == jobs.TagGeneral {
			weight = generalTagWeight
		}
		for range weight {
			pool = append(pool, tag)
		}
	}
	if len(pool) == 0 {
		return jobs.TagGeneral
	}
	return pool[s.rng.IntN(len(pool))]
}

func (s *Simulation) anySupports(tag string) bool {
	for _, p := range s.state.Processors {
		if p.Supports(tag) {
			return true
		}
	}
	return false
}

// AssignJob starts job on the processor at index. Daemon assignments carry
// the processor's automation penalty. Validation order: index, idle, tag
// support, functional. Nothing changes on error.
func (s *Simulation) AssignJob(job jobs.Job, index int, daemon bool) error {
	p, ok := s.processorAt(index)
	if !ok {
		return s.rejectAssignment(job, index, processor.ErrInvalidProcessor)
	}
	if !p.IsIdle() {
		return s.rejectAssignment(job, index, processor.ErrProcessorBusy)
	}
	if !p.Supports(job.Tag) {
		return s.rejectAssignment(job, index, &processor.IncompatibleInstructionError{Tag: job.Tag})
	}
	if !p.IsFunctional() {
		return s.rejectAssignment(job, index, processor.ErrProcessorInoperative)
	}

	var penalty *processor.DaemonPenalty
	if daemon {
		pen := p.DaemonPenalty
		penalty = &pen
	}
	durationMs := economy.Duration(job, p, penalty)
	p.Assign(job, durationMs, penalty)

	secs := float64(durationMs) / 1000
	if daemon {
		s.pushMessage(fmt.Sprintf("Daemon queued %s on %s (%.1fs, automation tax)", job.Name, p.Name, secs))
	} else {
		s.pushMessage(fmt.Sprintf("Assigned %s to %s (%.1fs)", job.Name, p.Name, secs))
	}
	return nil
}

// assignFromBoard moves the job at jobIndex onto the processor. A rejected job
// goes back to its slot on the board.
func (s *Simulation) assignFromBoard(jobIndex, procIndex int, daemon bool) error {
	job, ok := s.TakeJob(jobIndex)
	if !ok {
		return errJobGone
	}
	if err := s.AssignJob(job, procIndex, daemon); err != nil {
		s.state.Jobs = slices.Insert(s.state.Jobs, min(jobIndex, len(s.state.Jobs)), job)
		return err
	}
	return nil
}

func (s *Simulation) rejectAssignment(job jobs.Job, index int, err error) error {
	slog.Warn("assignment rejected", "job", job.ID, "processor", index, "error", err)
	return err
}
