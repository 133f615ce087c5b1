package main

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/array-sim/internal/commands"
	"github.com/talgya/array-sim/internal/engine"
	"github.com/talgya/array-sim/internal/entropy"
	"github.com/talgya/array-sim/internal/persistence"
)

func TestParseAutosave(t *testing.T) {
	d, err := parseAutosave("")
	require.NoError(t, err)
	assert.Equal(t, defaultAutosave, d)

	d, err = parseAutosave("5s")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	_, err = parseAutosave("-1s")
	assert.Error(t, err)
	_, err = parseAutosave("soon")
	assert.Error(t, err)
}

func TestRandomSource(t *testing.T) {
	a, err := randomSource("9")
	require.NoError(t, err)
	b, err := randomSource("9")
	require.NoError(t, err)
	assert.Equal(t, a.Float64(), b.Float64())

	_, err = randomSource("nine")
	assert.Error(t, err)
}

func TestLoadOrFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "array.db")
	db, err := persistence.Open(path)
	require.NoError(t, err)
	defer db.Close()
	cfg := engine.DefaultConfig()

	sim, err := loadOrFresh(db, true, cfg, entropy.NewSeeded(1))
	require.NoError(t, err, "an empty database starts a fresh game")
	assert.Equal(t, []string{"Welcome to the Array of Babel."}, sim.Messages())

	sim.Update(12 * time.Second)
	require.NoError(t, db.SaveGame(sim.State(), sim.Messages()))

	loaded, err := loadOrFresh(db, true, cfg, entropy.NewSeeded(1))
	require.NoError(t, err)
	assert.Equal(t, sim.Jobs(), loaded.Jobs())
	msgs := loaded.Messages()
	assert.Equal(t, "Loaded save state.", msgs[len(msgs)-1])
}

func TestLoadOrFreshRejectsPartialSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "array.db")
	db, err := persistence.Open(path)
	require.NoError(t, err)
	defer db.Close()
	cfg := engine.DefaultConfig()

	sim := engine.NewSimulation(cfg, entropy.NewSeeded(4))
	sim.Update(12 * time.Second)
	require.NotEmpty(t, sim.Jobs())
	require.NoError(t, db.SaveGame(sim.State(), sim.Messages()))
	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec("DELETE FROM game_meta WHERE key = 'credits'")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = loadOrFresh(db, true, cfg, entropy.NewSeeded(4))
	assert.ErrorContains(t, err, "credits")

	_, _, err = db.LoadGame()
	assert.Error(t, err, "the save is left untouched")
}

func TestPrintStatus(t *testing.T) {
	sim := engine.NewSimulation(engine.DefaultConfig(), entropy.NewSeeded(3))
	sim.Update(6 * time.Second)
	ctrl := commands.NewController()

	var out bytes.Buffer
	printStatus(&out, sim, ctrl)
	assert.Contains(t, out.String(), "credits 120")
	assert.Contains(t, out.String(), "Model F12-Scalar")
	assert.Contains(t, out.String(), "General Task #1")

	ctrl.StoreOpen = true
	out.Reset()
	printStatus(&out, sim, ctrl)
	assert.Contains(t, out.String(), "Clock Tuning")
	assert.NotContains(t, out.String(), "jobs *")
}
