package processor

import (
	"math"

	"github.com/talgya/array-sim/internal/jobs"
)

// Evaluate computes reliability, heat, and power draw for running job on this
// unit with coolingBonus temporary cooling levels.
func (p *Processor) Evaluate(job jobs.Job, coolingBonus uint8) Evaluation {
	effCooling := effectiveCooling(p.CoolingLevel, p.CoolingCap, coolingBonus)
	load := p.loadModifier(job.Tag)
	noCooling := p.CoolingRequired && effCooling == 0

	var deficit float64
	if p.RequiresCoolingMin > effCooling {
		deficit = float64(p.RequiresCoolingMin - effCooling)
	}

	heat := p.HeatOutputBase * (1 + load)
	heat *= 1 - coolingReduction(effCooling)
	if noCooling {
		heat += 1.2
	}
	heat += 0.8 * deficit

	hazardPenalty := tagHazard(job.Tag) * hardeningMultiplier(p.HardeningLevel, job.Tag)

	reliability := p.ReliabilityBase
	reliability -= math.Max(heat, 0) * heatFailureFactor
	reliability -= hazardPenalty
	reliability += coolingReliabilityBonus(effCooling)
	if noCooling {
		reliability -= 0.25
	}
	reliability -= 0.15 * deficit
	reliability -= p.Fragility * math.Max(heat, 0)
	reliability = clamp(reliability, 0, 0.999)

	power := math.Max(p.PowerDrawBase*(1+load), 0)
	power = math.Max(power*(1+electricCoolingScale*float64(effCooling)), 0)

	return Evaluation{
		Reliability:      reliability,
		Heat:             heat,
		EffectiveCooling: effCooling,
		HazardPenalty:    hazardPenalty,
		PowerDraw:        power,
	}
}

func (p *Processor) loadModifier(tag string) float64 {
	return p.PowerDrawMod[tag]
}

func effectiveCooling(level, limit, bonus uint8) uint8 {
	eff := uint16(level) + uint16(bonus)
	ceiling := uint16(limit) + uint16(bonus)
	return uint8(min(eff, ceiling))
}

func coolingReduction(level uint8) float64 {
	switch level {
	case 0:
		return 0
	case 1:
		return 0.25
	case 2:
		return 0.45
	case 3:
		return 0.60
	}
	return 0.60 + 0.05*float64(level-3)
}

func coolingReliabilityBonus(level uint8) float64 {
	switch level {
	case 0:
		return 0
	case 1:
		return 0.01
	case 2:
		return 0.02
	case 3:
		return 0.03
	}
	return 0.03 + 0.005*float64(level-3)
}

func tagHazard(tag string) float64 {
	switch tag {
	case jobs.TagRadiation:
		return 0.02
	case jobs.TagAngel:
		return 0.03
	case jobs.TagSurveillance:
		return 0.01
	case jobs.TagSIMD:
		return 0.015
	}
	return 0
}

func isHazardous(tag string) bool {
	return tag == jobs.TagRadiation || tag == jobs.TagAngel || tag == jobs.TagSurveillance
}

// hardeningMultiplier scales a tag's hazard by installed hardening. Hazardous
// tags fall off steeply; everything else only slightly.
func hardeningMultiplier(level uint8, tag string) float64 {
	if isHazardous(tag) {
		return math.Max(1-0.2*float64(level), 0.2)
	}
	return math.Max(1-0.05*float64(level), 0.5)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
