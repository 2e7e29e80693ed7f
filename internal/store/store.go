package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}
	slog.Info("migrating database", "from", version, "to", currentVersion)

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS goals (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL UNIQUE,
		mood          TEXT NOT NULL DEFAULT 'moderate',
		intensity     TEXT NOT NULL DEFAULT 'medium',
		hours_per_day REAL NOT NULL DEFAULT 2,
		days          TEXT NOT NULL DEFAULT '',
		deadline      TEXT NOT NULL DEFAULT '',
		plan_json     TEXT NOT NULL DEFAULT '',
		archived      INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS plan_tasks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		goal_id     INTEGER NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
		week        INTEGER NOT NULL,
		week_title  TEXT NOT NULL DEFAULT '',
		date        TEXT NOT NULL,
		title       TEXT NOT NULL,
		duration    TEXT NOT NULL DEFAULT '',
		done        INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_plan_tasks_goal ON plan_tasks(goal_id);
	CREATE INDEX IF NOT EXISTS idx_plan_tasks_date ON plan_tasks(date);

	CREATE TABLE IF NOT EXISTS focus_phases (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id          TEXT NOT NULL,
		kind            TEXT NOT NULL,
		planned_seconds INTEGER NOT NULL,
		actual_seconds  INTEGER NOT NULL,
		cycle           INTEGER NOT NULL DEFAULT 0,
		skipped         INTEGER NOT NULL DEFAULT 0,
		completed_at    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_focus_phases_run       ON focus_phases(run_id);
	CREATE INDEX IF NOT EXISTS idx_focus_phases_completed ON focus_phases(completed_at);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('focus_study',       '1500'),
		('focus_short_break', '300'),
		('focus_long_break',  '900'),
		('focus_cycles',      '4'),
		('custom_minutes',    '25'),
		('daily_goal',        '7200'),
		('week_start',        'monday');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/studyfocus/studyfocus.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "studyfocus", "studyfocus.db"), nil
}
