// Package persistence stores the game in a SQLite file: a key/value meta
// table for scalars plus one table per collection.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/array-sim/internal/engine"
	"github.com/talgya/array-sim/internal/jobs"
	"github.com/talgya/array-sim/internal/processor"
)

// ErrNoSave is returned by LoadGame when the database holds no game.
var ErrNoSave = errors.New("no saved game")

// Meta keys.
const (
	metaCredits         = "credits"
	metaStorageCapacity = "storage_capacity"
	metaStorageStored   = "storage_stored"
	metaDaemonUnlocked  = "daemon_unlocked"
	metaDaemonEnabled   = "daemon_enabled"
	metaThermalPasteMs  = "thermal_paste_ms"
	metaJobCounter      = "job_counter"
	metaUnlockedTags    = "unlocked_tags"
	metaStorePurchases  = "store_purchases"
	metaSaveID          = "save_id"
	metaSavedAt         = "saved_at"
)

// DB wraps a SQLite connection for game persistence.
type DB struct {
	conn *sqlx.DB
}

// Exists reports whether a save file is present at path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat save: %w", err)
	}
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS game_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS processors (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		work_json TEXT,
		spec_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS jobs (
		position INTEGER PRIMARY KEY,
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		tag TEXT NOT NULL,
		base_time_ms INTEGER NOT NULL,
		base_reward INTEGER NOT NULL,
		quality_target INTEGER NOT NULL,
		data_output INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		body TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type processorRow struct {
	Position int            `db:"position"`
	Name     string         `db:"name"`
	Status   string         `db:"status"`
	Work     sql.NullString `db:"work_json"`
	Spec     string         `db:"spec_json"`
}

type jobRow struct {
	Position int `db:"position"`
	jobs.Job
}

// SaveGame replaces the stored game with state and the message log in a
// single transaction.
func (db *DB) SaveGame(state engine.GameState, messages []string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"game_meta", "processors", "jobs", "messages"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := saveMeta(tx, state); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := saveProcessors(tx, state.Processors); err != nil {
		return fmt.Errorf("save processors: %w", err)
	}

	for i, j := range state.Jobs {
		_, err := tx.NamedExec(`INSERT INTO jobs
			(position, id, name, tag, base_time_ms, base_reward, quality_target, data_output)
			VALUES (:position, :id, :name, :tag, :base_time_ms, :base_reward, :quality_target, :data_output)`,
			jobRow{Position: i, Job: j},
		)
		if err != nil {
			return fmt.Errorf("insert job %d: %w", j.ID, err)
		}
	}

	for _, m := range messages {
		if _, err := tx.Exec("INSERT INTO messages (body) VALUES (?)", m); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("game saved",
		"credits", state.Credits,
		"processors", len(state.Processors),
		"jobs", len(state.Jobs),
	)
	return nil
}

func saveMeta(tx *sqlx.Tx, state engine.GameState) error {
	purchases := make([]string, len(state.StorePurchases))
	for i, n := range state.StorePurchases {
		purchases[i] = strconv.FormatUint(uint64(n), 10)
	}

	meta := map[string]string{
		metaCredits:         strconv.FormatUint(state.Credits, 10),
		metaStorageCapacity: strconv.FormatUint(state.Storage.Capacity, 10),
		metaStorageStored:   strconv.FormatUint(state.Storage.Stored, 10),
		metaDaemonUnlocked:  strconv.FormatBool(state.DaemonUnlocked),
		metaDaemonEnabled:   strconv.FormatBool(state.DaemonEnabled),
		metaThermalPasteMs:  strconv.FormatUint(state.ThermalPasteMs, 10),
		metaJobCounter:      strconv.FormatUint(state.JobCounter, 10),
		metaUnlockedTags:    strings.Join(state.UnlockedTags, ","),
		metaStorePurchases:  strings.Join(purchases, ","),
		metaSaveID:          uuid.NewString(),
		metaSavedAt:         time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT INTO game_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

func saveProcessors(tx *sqlx.Tx, ps []*processor.Processor) error {
	stmt, err := tx.Preparex(`INSERT INTO processors
		(position, name, status, work_json, spec_json)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range ps {
		spec, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode processor %d: %w", i, err)
		}
		var work sql.NullString
		if w, ok := p.Status.(*processor.Working); ok {
			raw, err := json.Marshal(w)
			if err != nil {
				return fmt.Errorf("encode work %d: %w", i, err)
			}
			work = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := stmt.Exec(i, p.Name, string(p.Status.Kind()), work, string(spec)); err != nil {
			return fmt.Errorf("insert processor %d: %w", i, err)
		}
	}
	return nil
}

// LoadGame reads the stored game and its message log. It returns ErrNoSave
// when the file has no game in it; any row that does not decode is an error.
func (db *DB) LoadGame() (engine.GameState, []string, error) {
	var state engine.GameState

	var pairs []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.Select(&pairs, "SELECT key, value FROM game_meta"); err != nil {
		return state, nil, fmt.Errorf("load meta: %w", err)
	}
	if len(pairs) == 0 {
		return state, nil, ErrNoSave
	}
	meta := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		meta[kv.Key] = kv.Value
	}
	if err := decodeMeta(meta, &state); err != nil {
		return state, nil, fmt.Errorf("load meta: %w", err)
	}

	var procRows []processorRow
	if err := db.conn.Select(&procRows, "SELECT position, name, status, work_json, spec_json FROM processors ORDER BY position"); err != nil {
		return state, nil, fmt.Errorf("load processors: %w", err)
	}
	for _, row := range procRows {
		p, err := decodeProcessor(row)
		if err != nil {
			return state, nil, fmt.Errorf("load processor %d: %w", row.Position, err)
		}
		state.Processors = append(state.Processors, p)
	}

	var jobRows []jobRow
	if err := db.conn.Select(&jobRows, `SELECT position, id, name, tag, base_time_ms, base_reward,
		quality_target, data_output FROM jobs ORDER BY position`); err != nil {
		return state, nil, fmt.Errorf("load jobs: %w", err)
	}
	for _, row := range jobRows {
		state.Jobs = append(state.Jobs, row.Job)
	}

	var messages []string
	if err := db.conn.Select(&messages, "SELECT body FROM messages ORDER BY id"); err != nil {
		return state, nil, fmt.Errorf("load messages: %w", err)
	}

	slog.Info("game loaded",
		"save_id", meta[metaSaveID],
		"saved_at", meta[metaSavedAt],
		"processors", len(state.Processors),
		"jobs", len(state.Jobs),
	)
	return state, messages, nil
}

func decodeMeta(meta map[string]string, state *engine.GameState) error {
	uints := []struct {
		key string
		dst *uint64
	}{
		{metaCredits, &state.Credits},
		{metaStorageCapacity, &state.Storage.Capacity},
		{metaStorageStored, &state.Storage.Stored},
		{metaThermalPasteMs, &state.ThermalPasteMs},
		{metaJobCounter, &state.JobCounter},
	}
	for _, u := range uints {
		v, ok := meta[u.key]
		if !ok {
			return fmt.Errorf("missing %s", u.key)
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", u.key, err)
		}
		*u.dst = n
	}
	if state.Storage.Stored > state.Storage.Capacity {
		return fmt.Errorf("stored data %d exceeds capacity %d", state.Storage.Stored, state.Storage.Capacity)
	}

	var err error
	if state.DaemonUnlocked, err = parseBool(meta, metaDaemonUnlocked); err != nil {
		return err
	}
	if state.DaemonEnabled, err = parseBool(meta, metaDaemonEnabled); err != nil {
		return err
	}

	if tags := meta[metaUnlockedTags]; tags != "" {
		state.UnlockedTags = strings.Split(tags, ",")
	}
	if raw := meta[metaStorePurchases]; raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.ParseUint(part, 10, 32)
			if err != nil {
				return fmt.Errorf("%s: %w", metaStorePurchases, err)
			}
			state.StorePurchases = append(state.StorePurchases, uint32(n))
		}
	}
	return nil
}

// parseBool treats a missing key as false; older saves predate some flags.
func parseBool(meta map[string]string, key string) (bool, error) {
	v, ok := meta[key]
	if !ok {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func decodeProcessor(row processorRow) (*processor.Processor, error) {
	var p processor.Processor
	if err := json.Unmarshal([]byte(row.Spec), &p); err != nil {
		return nil, fmt.Errorf("decode spec: %w", err)
	}

	switch processor.StatusKind(row.Status) {
	case processor.KindIdle:
		p.Status = processor.Idle{}
	case processor.KindBurntOut:
		p.Status = processor.BurntOut{}
	case processor.KindDestroyed:
		p.Status = processor.Destroyed{}
	case processor.KindWorking:
		if !row.Work.Valid {
			return nil, errors.New("working processor without job")
		}
		var w processor.Working
		if err := json.Unmarshal([]byte(row.Work.String), &w); err != nil {
			return nil, fmt.Errorf("decode work: %w", err)
		}
		if w.RemainingMs > w.TotalMs {
			return nil, fmt.Errorf("remaining %dms exceeds total %dms", w.RemainingMs, w.TotalMs)
		}
		p.Status = &w
	default:
		return nil, fmt.Errorf("unknown status %q", row.Status)
	}
	return &p, nil
}
