// Command arraysim runs the Array of Babel idle game in the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/talgya/array-sim/internal/commands"
	"github.com/talgya/array-sim/internal/engine"
	"github.com/talgya/array-sim/internal/entropy"
	"github.com/talgya/array-sim/internal/persistence"
)

const (
	defaultSavePath = "data/array.db"
	defaultAutosave = 30 * time.Second
)

func main() {
	setupLogging(os.Getenv("ARRAYSIM_LOG_LEVEL"))

	savePath := envOr("ARRAYSIM_SAVE_PATH", defaultSavePath)
	autosaveEvery, err := parseAutosave(os.Getenv("ARRAYSIM_AUTOSAVE"))
	if err != nil {
		slog.Error("invalid ARRAYSIM_AUTOSAVE", "error", err)
		os.Exit(1)
	}
	rng, err := randomSource(os.Getenv("ARRAYSIM_SEED"))
	if err != nil {
		slog.Error("invalid ARRAYSIM_SEED", "error", err)
		os.Exit(1)
	}
	cfg := engine.DefaultConfig()

	// ── Save file ───────────────────────────────────────────────────
	existed, err := persistence.Exists(savePath)
	if err != nil {
		slog.Error("failed to check save", "path", savePath, "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		slog.Error("failed to create save directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(savePath)
	if err != nil {
		slog.Error("failed to open save", "path", savePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sim, err := loadOrFresh(db, existed, cfg, rng)
	if err != nil {
		slog.Error("failed to load save", "path", savePath, "error", err)
		os.Exit(1)
	}

	// ── Engine ──────────────────────────────────────────────────────
	eng := engine.NewEngine(sim, nil)
	ctrl := commands.NewController()
	autosave := rate.Sometimes{Interval: autosaveEvery}
	eng.OnTick = func(sim *engine.Simulation, _ uint64) {
		autosave.Do(func() {
			if err := db.SaveGame(sim.State(), sim.Messages()); err != nil {
				slog.Error("autosave failed", "error", err)
			}
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, quit := context.WithCancel(ctx)
	defer quit()

	lines := readLines(os.Stdin)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := eng.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return dispatch(gctx, lines, eng, ctrl, quit)
	})

	fmt.Println("The Array of Babel is humming. Type 'help' for commands, 'q' to save and quit.")
	if err := g.Wait(); err != nil {
		slog.Error("engine stopped with error", "error", err)
	}

	// The engine goroutine has exited; the simulation is ours again.
	ctrl.Release(sim)
	slog.Info("final save...")
	if err := db.SaveGame(sim.State(), sim.Messages()); err != nil {
		slog.Error("final save failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("Array halted. Game state saved.")
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil || level == "" {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler).With("session", uuid.NewString()))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseAutosave(v string) (time.Duration, error) {
	if v == "" {
		return defaultAutosave, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("autosave interval must be positive, got %s", d)
	}
	return d, nil
}

func randomSource(seed string) (entropy.Source, error) {
	if seed == "" {
		return entropy.NewDefault(), nil
	}
	n, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return nil, err
	}
	slog.Info("using fixed seed", "seed", n)
	return entropy.NewSeeded(n), nil
}

// loadOrFresh resumes the saved game when there is one. Only a missing file
// or an empty database starts fresh; anything unreadable is returned as an error.
func loadOrFresh(db *persistence.DB, existed bool, cfg engine.Config, rng entropy.Source) (*engine.Simulation, error) {
	if existed {
		state, messages, err := db.LoadGame()
		switch {
		case err == nil:
			sim := engine.FromState(state, cfg, rng)
			sim.RestoreMessages(messages)
			sim.AddMessage("Loaded save state.")
			slog.Info("save restored", "credits", state.Credits, "processors", len(state.Processors))
			return sim, nil
		case !errors.Is(err, persistence.ErrNoSave):
			return nil, err
		}
	}

	slog.Info("no saved game found, starting fresh")
	sim := engine.NewSimulation(cfg, rng)
	sim.AddMessage("Welcome to the Array of Babel.")
	return sim, nil
}

// readLines feeds stdin lines to a channel. It is never joined: a blocked
// read must not hold up shutdown.
func readLines(f *os.File) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			out <- sc.Text()
		}
	}()
	return out
}

// dispatch parses input and submits it to the engine until quit, EOF, or
// cancellation.
func dispatch(ctx context.Context, lines <-chan string, eng *engine.Engine, ctrl *commands.Controller, quit context.CancelFunc) error {
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			quit()
			return nil
		}

		cmd, err := commands.Parse(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		switch cmd.Kind {
		case commands.Help:
			fmt.Println(strings.TrimSpace(commands.Usage))
			continue
		case commands.Status:
			eng.Submit(func(sim *engine.Simulation) { printStatus(os.Stdout, sim, ctrl) })
			continue
		}

		eng.Submit(func(sim *engine.Simulation) {
			if ctrl.Apply(sim, cmd) {
				quit()
				return
			}
			printStatus(os.Stdout, sim, ctrl)
		})
	}
}
