package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	queries
}

// Tx exposes the same query methods as Store, scoped to one transaction.
type Tx struct {
	queries
}

type queries struct {
	q querier
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection serializes goal read-modify-write.
	db.SetMaxOpenConns(1)

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

	s := &Store{db: db, queries: queries{q: db}}
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

// WithTx runs fn inside a single transaction. Any error from fn rolls
// the whole transaction back.
func (s *Store) WithTx(fn func(tx *Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&Tx{queries{q: tx}}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
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
	CREATE TABLE IF NOT EXISTS categories (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		icon        TEXT NOT NULL DEFAULT '',
		color       TEXT NOT NULL DEFAULT '#6C63FF',
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS goals (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id             INTEGER NOT NULL,
		title               TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		category_id         INTEGER NOT NULL REFERENCES categories(id),
		period              TEXT NOT NULL DEFAULT 'monthly',
		start_date          TEXT NOT NULL,
		end_date            TEXT NOT NULL,
		target_value        REAL NOT NULL DEFAULT 0,
		current_value       REAL NOT NULL DEFAULT 0,
		measurement_unit    TEXT NOT NULL DEFAULT 'count',
		custom_unit         TEXT NOT NULL DEFAULT '',
		is_completed        INTEGER NOT NULL DEFAULT 0,
		progress_percentage REAL NOT NULL DEFAULT 0,
		created_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);

	CREATE TABLE IF NOT EXISTS tasks (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id          INTEGER NOT NULL,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		category_id      INTEGER NOT NULL REFERENCES categories(id),
		date             TEXT NOT NULL,
		start_time       TEXT NOT NULL,
		end_time         TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		priority         INTEGER NOT NULL DEFAULT 2,
		status           TEXT NOT NULL DEFAULT 'pending',
		repeat_pattern   TEXT NOT NULL DEFAULT 'none',
		repeat_days      TEXT NOT NULL DEFAULT '',
		repeat_end_date  TEXT,
		goal_id          INTEGER REFERENCES goals(id) ON DELETE SET NULL,
		target_value     REAL,
		actual_value     REAL,
		notes            TEXT NOT NULL DEFAULT '',
		energy_level     TEXT NOT NULL DEFAULT 'medium',
		created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user_date ON tasks(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_tasks_goal      ON tasks(goal_id);

	CREATE TABLE IF NOT EXISTS occurrences (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id      INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		date         TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending',
		actual_value REAL,
		notes        TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		UNIQUE(task_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_occurrences_date ON occurrences(date);

	CREATE TABLE IF NOT EXISTS energy_profiles (
		user_id         INTEGER PRIMARY KEY,
		early_morning   INTEGER NOT NULL DEFAULT 5,
		mid_morning     INTEGER NOT NULL DEFAULT 7,
		late_morning    INTEGER NOT NULL DEFAULT 6,
		early_afternoon INTEGER NOT NULL DEFAULT 5,
		late_afternoon  INTEGER NOT NULL DEFAULT 4,
		evening         INTEGER NOT NULL DEFAULT 3,
		night           INTEGER NOT NULL DEFAULT 2,
		monday_mod      INTEGER NOT NULL DEFAULT 0,
		tuesday_mod     INTEGER NOT NULL DEFAULT 0,
		wednesday_mod   INTEGER NOT NULL DEFAULT 0,
		thursday_mod    INTEGER NOT NULL DEFAULT 0,
		friday_mod      INTEGER NOT NULL DEFAULT 0,
		saturday_mod    INTEGER NOT NULL DEFAULT 1,
		sunday_mod      INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS user_preferences (
		user_id                 INTEGER PRIMARY KEY,
		default_view            TEXT NOT NULL DEFAULT 'day',
		week_start              INTEGER NOT NULL DEFAULT 0,
		wake_up_time            TEXT,
		sleep_time              TEXT,
		work_start_time         TEXT,
		work_end_time           TEXT,
		break_start_time        TEXT,
		break_end_time          TEXT,
		theme                   TEXT NOT NULL DEFAULT 'system',
		reminder_before_minutes INTEGER NOT NULL DEFAULT 15
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/planday/planday.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "planday", "planday.db"), nil
}
