// Package economy holds the pure reward and cost calculations and the data
// storage ledger. Nothing here mutates simulation state except Storage.
package economy

import (
	"math"

	"github.com/talgya/array-sim/internal/entropy"
	"github.com/talgya/array-sim/internal/jobs"
	"github.com/talgya/array-sim/internal/processor"
)

// ElectricityRate is credits charged per unit of summed power draw each day.
const ElectricityRate = 4.0

// Duration returns how long job takes on p, in milliseconds. A daemon
// penalty stretches the time by its multiplier. Never less than 1ms.
func Duration(job jobs.Job, p *processor.Processor, penalty *processor.DaemonPenalty) uint64 {
	d := float64(job.BaseTimeMs) / math.Max(p.Speed, 0.1)
	if penalty != nil {
		d *= penalty.TimeMultiplier
	}
	return uint64(math.Max(math.Round(d), 1))
}

// RollQuality draws the delivered quality for a completed job, 0..100.
func RollQuality(job jobs.Job, p *processor.Processor, penalty *processor.DaemonPenalty, rng entropy.Source) uint8 {
	noise := entropy.RangeInclusive(rng, -4, 4)
	q := int(job.QualityTarget) + int(p.QualityBias) + noise
	if penalty != nil {
		q += int(penalty.Quality)
	}
	return uint8(min(max(q, 0), 100))
}

// Payout scales the base reward between 0.7x (quality 0) and 1.2x (quality 100).
// Rounding is kept inside those bounds.
func Payout(job jobs.Job, quality uint8) uint64 {
	base := float64(job.BaseReward)
	factor := 0.7 + float64(min(quality, 100))/100*0.5
	paid := math.Round(base * factor)
	paid = math.Min(paid, math.Floor(base*1.2))
	paid = math.Max(paid, math.Ceil(base*0.7))
	return uint64(paid)
}

// UpkeepTotal sums the daily upkeep of the fleet.
func UpkeepTotal(ps []*processor.Processor) uint64 {
	var total uint64
	for _, p := range ps {
		total += p.UpkeepCost
	}
	return total
}

// TotalPowerDraw sums the last observed draw of every unit.
func TotalPowerDraw(ps []*processor.Processor) float64 {
	var total float64
	for _, p := range ps {
		total += p.LastPowerDraw
	}
	return total
}

// ElectricityCost is the daily power bill for the fleet's last observed draw.
func ElectricityCost(ps []*processor.Processor) uint64 {
	return uint64(math.Max(math.Round(TotalPowerDraw(ps)*ElectricityRate), 0))
}

// PassiveIncome is the daily dividend paid on stored data.
func PassiveIncome(stored uint64) uint64 {
	if stored == 0 {
		return 0
	}
	return max(uint64(math.Round(float64(stored)*0.05)), 1)
}
