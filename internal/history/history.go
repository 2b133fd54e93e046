// Package history keeps a journal of provisioning runs in a local sqlite
// database so `escadm status` can show what the last run did and when.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

type DB struct {
	*sql.DB
}

func New(dbPath string) (*DB, error) {
	database, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := database.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	if _, err := database.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := database.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	db := &DB{database}
	if err := db.migrate(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,                 -- Timestamp-based ID
    started_at TEXT NOT NULL,
    finished_at TEXT,
    reuse_mode INTEGER NOT NULL,
    outcome TEXT NOT NULL                -- success | failed:<step>
);

CREATE TABLE IF NOT EXISTS run_steps (
    run_id TEXT NOT NULL,
    step TEXT NOT NULL,
    status TEXT NOT NULL,                -- applied | skipped | failed
    PRIMARY KEY (run_id, step),
    FOREIGN KEY (run_id) REFERENCES runs(id)
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history tables: %w", err)
	}
	return nil
}

// Run is one recorded provisioning run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	ReuseMode  bool
	Outcome    string
	Steps      []RunStep
}

type RunStep struct {
	Step   string
	Status string
}

// NewRunID derives a sortable ID from the start time.
func NewRunID(t time.Time) string {
	return t.UTC().Format("20060102150405.000000000")
}

// RecordRun persists a completed run with its per-step outcomes.
func (db *DB) RecordRun(run Run) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	reuse := 0
	if run.ReuseMode {
		reuse = 1
	}
	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, finished_at, reuse_mode, outcome) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339), reuse, run.Outcome,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	for _, s := range run.Steps {
		if _, err := tx.Exec(
			`INSERT INTO run_steps (run_id, step, status) VALUES (?, ?, ?)`,
			run.ID, s.Step, s.Status,
		); err != nil {
			return fmt.Errorf("failed to record step %s: %w", s.Step, err)
		}
	}

	return tx.Commit()
}

// LastRun returns the most recent run, or false when the journal is empty.
func (db *DB) LastRun() (Run, bool, error) {
	row := db.QueryRow(`SELECT id, started_at, finished_at, reuse_mode, outcome FROM runs ORDER BY id DESC LIMIT 1`)

	var run Run
	var started, finished string
	var reuse int
	if err := row.Scan(&run.ID, &started, &finished, &reuse, &run.Outcome); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, false, nil
		}
		return Run{}, false, fmt.Errorf("failed to read last run: %w", err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	run.ReuseMode = reuse == 1

	rows, err := db.Query(`SELECT step, status FROM run_steps WHERE run_id = ? ORDER BY step`, run.ID)
	if err != nil {
		return Run{}, false, fmt.Errorf("failed to read run steps: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s RunStep
		if err := rows.Scan(&s.Step, &s.Status); err != nil {
			return Run{}, false, fmt.Errorf("failed to scan run step: %w", err)
		}
		run.Steps = append(run.Steps, s)
	}
	return run, true, rows.Err()
}
