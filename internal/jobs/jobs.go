// Package jobs defines billable work units and the generator that posts them
// to the job board.
package jobs

import (
	"fmt"

	"github.com/talgya/array-sim/internal/entropy"
)

// Instruction tags. A processor may only run jobs whose tag it supports.
const (
	TagGeneral      = "GENERAL"
	TagSIMD         = "SIMD"
	TagRadiation    = "RADIATION"
	TagAngel        = "ANGEL"
	TagSurveillance = "SURVEILLANCE"
)

// Job is immutable once generated.
type Job struct {
	ID            uint64 `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Tag           string `json:"tag" db:"tag"`
	BaseTimeMs    uint64 `json:"base_time_ms" db:"base_time_ms"`
	BaseReward    uint64 `json:"base_reward" db:"base_reward"`
	QualityTarget uint8  `json:"quality_target" db:"quality_target"`
	DataOutput    uint64 `json:"data_output" db:"data_output"`
}

// profile holds the half-open sampling ranges for one tag.
type profile struct {
	label              string
	timeLo, timeHi     int
	rewardLo, rewardHi int
	qualLo, qualHi     int
	dataLo, dataHi     int
}

var (
	generalProfile = profile{"General Task", 4000, 9000, 70, 140, 55, 85, 12, 32}
	simdProfile    = profile{"SIMD Workload", 6000, 13000, 160, 260, 65, 95, 36, 72}
)

// Generate creates a job for tag. Unknown tags use the general profile.
// The caller owns id allocation.
func Generate(id uint64, tag string, rng entropy.Source) Job {
	p := generalProfile
	if tag == TagSIMD {
		p = simdProfile
	} else {
		tag = TagGeneral
	}

	return Job{
		ID:            id,
		Name:          fmt.Sprintf("%s #%d", p.label, id),
		Tag:           tag,
		BaseTimeMs:    uint64(entropy.Range(rng, p.timeLo, p.timeHi)),
		BaseReward:    uint64(entropy.Range(rng, p.rewardLo, p.rewardHi)),
		QualityTarget: uint8(entropy.Range(rng, p.qualLo, p.qualHi)),
		DataOutput:    uint64(entropy.Range(rng, p.dataLo, p.dataHi)),
	}
}
