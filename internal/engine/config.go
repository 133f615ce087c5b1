package engine

import "time"

// Config holds the timing and economy knobs for a game.
type Config struct {
	JobSpawnInterval time.Duration // how often the board receives a job
	DayLength        time.Duration // upkeep/electricity/dividend cycle
	MaxJobs          int           // job board capacity
	MessageLimit     int           // retained message log lines
	DaemonUnlockAt   uint64        // credits that permanently unlock automation
	StartingCredits  uint64
	StartingStorage  uint64
	TickInterval     time.Duration // best-effort engine cadence
}

// DefaultConfig returns the standard game tuning.
func DefaultConfig() Config {
	return Config{
		JobSpawnInterval: 6 * time.Second,
		DayLength:        18 * time.Second,
		MaxJobs:          5,
		MessageLimit:     8,
		DaemonUnlockAt:   500,
		StartingCredits:  120,
		StartingStorage:  120,
		TickInterval:     100 * time.Millisecond,
	}
}
