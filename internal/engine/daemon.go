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

// Automation thresholds.
const (
	autoReliabilityFloor   = 0.35
	assistReliabilityFloor = 0.30
	autoHeatLimit          = 1.8
	safetyPivot            = 0.7
	safetyWeight           = 0.5
)

// Suggestion is the Assist-mode recommendation for an idle processor.
type Suggestion struct {
	JobIndex    int
	ETASeconds  float64
	Reliability float64
	Heat        float64
}

// scoring selects how bestJob ranks the board. Auto scoring applies the
// daemon penalty, the heat limit, tag affinity, and a safety term; Assist
// scoring ranks by raw reward rate.
type scoring struct {
	applyPenalty     bool
	reliabilityFloor float64
}

var (
	autoScoring   = scoring{applyPenalty: true, reliabilityFloor: autoReliabilityFloor}
	assistScoring = scoring{applyPenalty: false, reliabilityFloor: assistReliabilityFloor}
)

type candidate struct {
	index      int
	score      float64
	durationMs uint64
	eval       processor.Evaluation
}

// bestJob returns the highest-scoring eligible board job for p. Ties keep the
// earlier board position.
func (s *Simulation) bestJob(p *processor.Processor, sc scoring) (candidate, bool) {
	bonus := s.coolingBonus()
	var penalty *processor.DaemonPenalty
	if sc.applyPenalty {
		penalty = &p.DaemonPenalty
	}

	var best candidate
	found := false
	for i, job := range s.state.Jobs {
		if !p.Supports(job.Tag) {
			continue
		}
		ev := p.Evaluate(job, bonus)
		if ev.Reliability < sc.reliabilityFloor {
			continue
		}
		if p.HonorCoolingMins && p.RequiresCoolingMin > ev.EffectiveCooling && job.Tag != jobs.TagGeneral {
			continue
		}
		if sc.applyPenalty && p.HonorCoolingMins && ev.Heat > autoHeatLimit {
			continue
		}

		durationMs := economy.Duration(job, p, penalty)
		score := float64(job.BaseReward) / float64(durationMs)
		if sc.applyPenalty {
			score += p.DaemonAffinity[job.Tag]
			score += safetyWeight * (ev.Reliability - safetyPivot)
		}

		if !found || score > best.score {
			best = candidate{index: i, score: score, durationMs: durationMs, eval: ev}
			found = true
		}
	}
	return best, found
}

func automationReady(p *processor.Processor, mode processor.DaemonMode) bool {
	return p.DaemonUnlocked && p.DaemonMode == mode && p.IsIdle() && p.IsFunctional()
}

// runAutoPass lets every idle Auto processor claim its best job, highest
// daemon priority first, then fastest, then fleet order.
func (s *Simulation) runAutoPass() {
	if len(s.state.Jobs) == 0 {
		return
	}

	var order []int
	for i, p := range s.state.Processors {
		if automationReady(p, processor.DaemonAuto) {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		pa, pb := s.state.Processors[a], s.state.Processors[b]
		if pa.DaemonPriority != pb.DaemonPriority {
			if pa.DaemonPriority > pb.DaemonPriority {
				return -1
			}
			return 1
		}
		switch {
		case pa.Speed > pb.Speed:
			return -1
		case pa.Speed < pb.Speed:
			return 1
		}
		return 0
	})

	for _, idx := range order {
		if len(s.state.Jobs) == 0 {
			return
		}
		choice, ok := s.bestJob(s.state.Processors[idx], autoScoring)
		if !ok {
			continue
		}
		if err := s.assignFromBoard(choice.index, idx, true); err != nil {
			s.pushMessage(fmt.Sprintf("Daemon failed assignment: %v", err))
		}
	}
}

// AssistSuggestion returns the recommended job for an idle Assist processor.
func (s *Simulation) AssistSuggestion(index int) (Suggestion, bool) {
	p, ok := s.processorAt(index)
	if !ok || !automationReady(p, processor.DaemonAssist) || len(s.state.Jobs) == 0 {
		return Suggestion{}, false
	}
	choice, ok := s.bestJob(p, assistScoring)
	if !ok {
		return Suggestion{}, false
	}
	return Suggestion{
		JobIndex:    choice.index,
		ETASeconds:  float64(choice.durationMs) / 1000,
		Reliability: choice.eval.Reliability,
		Heat:        choice.eval.Heat,
	}, true
}

// AcceptAssist assigns the current suggestion to the processor at index,
// without a daemon penalty. It reports whether a job was assigned.
func (s *Simulation) AcceptAssist(index int) bool {
	p, ok := s.processorAt(index)
	switch {
	case !ok:
		s.pushMessage("Select a valid processor.")
		return false
	case !p.DaemonUnlocked || p.DaemonMode != processor.DaemonAssist:
		s.pushMessage(fmt.Sprintf("%s is not running Assist automation.", p.Name))
		return false
	case !p.IsFunctional():
		s.pushMessage(fmt.Sprintf("%s is offline and cannot take suggestions.", p.Name))
		return false
	case !p.IsIdle():
		s.pushMessage(fmt.Sprintf("%s is already working.", p.Name))
		return false
	}

	sug, ok := s.AssistSuggestion(index)
	if !ok {
		s.pushMessage(fmt.Sprintf("%s has no suggestions ready. Queue a job manually.", p.Name))
		return false
	}
	err := s.assignFromBoard(sug.JobIndex, index, false)
	switch {
	case errors.Is(err, errJobGone):
		s.pushMessage("Suggested job is no longer available.")
		return false
	case err != nil:
		s.pushMessage(fmt.Sprintf("Assist assignment failed: %v", err))
		return false
	}
	return true
}

// CycleDaemonMode steps the processor's mode Off -> Assist -> Auto -> Off.
func (s *Simulation) CycleDaemonMode(index int) {
	p, ok := s.processorAt(index)
	switch {
	case !ok:
		s.pushMessage("Select a valid processor.")
	case !s.state.DaemonUnlocked || !p.DaemonUnlocked:
		s.pushMessage(fmt.Sprintf("%s lacks daemon firmware. Install microcode to unlock.", p.Name))
	case !p.IsFunctional():
		s.pushMessage(fmt.Sprintf("%s is offline and cannot change automation mode.", p.Name))
	default:
		p.DaemonMode = p.DaemonMode.Next()
		s.pushMessage(fmt.Sprintf("%s automation mode -> %s.", p.Name, p.DaemonMode))
		slog.Info("daemon mode changed", "processor", p.Name, "index", index, "mode", p.DaemonMode.String())
	}
}

// ToggleHonorCooling flips whether automation respects the unit's cooling minimum.
func (s *Simulation) ToggleHonorCooling(index int) {
	p, ok := s.processorAt(index)
	if !ok {
		s.pushMessage("Select a valid processor.")
		return
	}
	p.HonorCoolingMins = !p.HonorCoolingMins
	verb := "will override cooling minimums"
	if p.HonorCoolingMins {
		verb = "will honor cooling minimums"
	}
	s.pushMessage(fmt.Sprintf("%s %s when auto-assigning.", p.Name, verb))
}
