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
    id TEXT PRIMARY KEY,
    subreddit TEXT NOT NULL,
    time_filter TEXT NOT NULL,
    post_limit INTEGER NOT NULL,
    viral_percentile REAL NOT NULL,
    min_posts INTEGER NOT NULL,
    viral_threshold REAL NOT NULL,
    total_posts INTEGER NOT NULL,
    viral_posts INTEGER NOT NULL,
    skipped INTEGER NOT NULL DEFAULT 0,
    report_md TEXT NOT NULL,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS flair_stats (
    run_id TEXT NOT NULL REFERENCES runs(id),
    rank INTEGER NOT NULL,
    flair TEXT NOT NULL,
    total_posts INTEGER NOT NULL,
    viral_posts INTEGER NOT NULL,
    viral_rate REAL NOT NULL,
    avg_score REAL NOT NULL,
    median_score REAL NOT NULL,
    max_score REAL NOT NULL,
    confidence REAL NOT NULL,
    viral_score REAL NOT NULL,
    PRIMARY KEY (run_id, flair)
);

CREATE INDEX IF NOT EXISTS idx_runs_subreddit ON runs(subreddit);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_flair_stats_run ON flair_stats(run_id);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
