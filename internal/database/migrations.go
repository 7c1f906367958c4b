package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT UNIQUE NOT NULL,
    seed INTEGER NOT NULL,
    start_date TEXT NOT NULL,
    horizon_days INTEGER NOT NULL,
    country_count INTEGER NOT NULL,
    observation_count INTEGER NOT NULL,
    correlation_sentiment REAL,
    correlation_volatility REAL,
    report_markdown TEXT NOT NULL DEFAULT '',
    generated_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS observations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    country_id TEXT NOT NULL,
    date TEXT NOT NULL,
    sentiment REAL NOT NULL,
    is_weekend INTEGER NOT NULL,
    post_count INTEGER NOT NULL,
    UNIQUE(run_id, country_id, date)
);

CREATE INDEX IF NOT EXISTS idx_observations_run_country
    ON observations(run_id, country_id);

CREATE TABLE IF NOT EXISTS country_stats (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    country_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    democracy_score REAL NOT NULL,
    classification TEXT NOT NULL,
    region TEXT NOT NULL,
    mean REAL NOT NULL,
    stddev REAL,
    min REAL NOT NULL,
    max REAL NOT NULL,
    median REAL NOT NULL,
    observations INTEGER NOT NULL,
    total_posts INTEGER NOT NULL,
    UNIQUE(run_id, country_id)
);
`)
			return err
		},
	},
}

func latestVersion() int {
	return migrations[len(migrations)-1].Version
}
