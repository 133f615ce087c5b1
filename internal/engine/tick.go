package engine

import (
	"context"
	"log/slog"
	"time"
)

// Command is a queued intent applied to the simulation between ticks.
type Command func(*Simulation)

const commandQueueSize = 64

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

// Now returns time.Now.
func (RealClock) Now() time.Time { return time.Now() }

// Engine drives a Simulation forward in real time. It is the only goroutine
// that touches the simulation once Run has started; everything else goes
// through Submit.
type Engine struct {
	Sim      *Simulation
	Ticks    uint64        // ticks run so far
	Speed    float64       // multiplier on elapsed time: 1.0 = real-time, 0 = paused
	Interval time.Duration // best-effort tick cadence

	// OnTick runs after every tick, on the engine goroutine.
	OnTick func(sim *Simulation, tick uint64)

	clock    Clock
	commands chan Command
}

// NewEngine wraps sim with the configured tick interval.
func NewEngine(sim *Simulation, clk Clock) *Engine {
	if clk == nil {
		clk = RealClock{}
	}
	interval := sim.Config().TickInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Engine{
		Sim:      sim,
		Speed:    1.0,
		Interval: interval,
		clock:    clk,
		commands: make(chan Command, commandQueueSize),
	}
}

// Submit queues cmd for the engine goroutine. It reports false when the
// queue is full and the command was dropped.
func (e *Engine) Submit(cmd Command) bool {
	select {
	case e.commands <- cmd:
		return true
	default:
		slog.Warn("command queue full, dropping command")
		return false
	}
}

// Run ticks until ctx is cancelled. Queued commands run to completion
// between ticks. Simulated time follows the measured wall delta, so a late
// tick advances the game further rather than losing time.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	slog.Info("simulation engine started", "interval", e.Interval, "speed", e.Speed)
	last := e.clock.Now()
	for {
		select {
		case <-ctx.Done():
			e.drain()
			slog.Info("simulation engine stopped", "ticks", e.Ticks)
			return ctx.Err()
		case cmd := <-e.commands:
			cmd(e.Sim)
		case <-ticker.C:
			now := e.clock.Now()
			elapsed := now.Sub(last)
			last = now
			if e.Speed <= 0 {
				continue
			}
			e.Step(time.Duration(float64(elapsed) * e.Speed))
		}
	}
}

// drain applies commands that were queued before shutdown.
func (e *Engine) drain() {
	for {
		select {
		case cmd := <-e.commands:
			cmd(e.Sim)
		default:
			return
		}
	}
}

// Step advances the simulation by delta and fires OnTick.
func (e *Engine) Step(delta time.Duration) {
	e.Ticks++
	e.Sim.Update(delta)
	if e.OnTick != nil {
		e.OnTick(e.Sim, e.Ticks)
	}
}
