package database

import (
	"database/sql"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// NewRunID returns a fresh lexicographically sortable run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// InsertRun persists a run and its ranked flairs in one transaction.
// An empty run ID gets a fresh ULID assigned; the used ID is returned.
func (db *DB) InsertRun(run *Run, flairs []FlairRow) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, subreddit, time_filter, post_limit, viral_percentile,
			min_posts, viral_threshold, total_posts, viral_posts, skipped, report_md)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Subreddit, run.TimeFilter, run.PostLimit, run.ViralPercentile,
		run.MinPosts, run.ViralThreshold, run.TotalPosts, run.ViralPosts,
		run.Skipped, run.ReportMarkdown,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for i, f := range flairs {
		_, err = tx.Exec(
			`INSERT INTO flair_stats (run_id, rank, flair, total_posts, viral_posts,
				viral_rate, avg_score, median_score, max_score, confidence, viral_score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i+1, f.Flair, f.TotalPosts, f.ViralPosts,
			f.ViralRate, f.AvgScore, f.MedianScore, f.MaxScore, f.Confidence, f.ViralScore,
		)
		if err != nil {
			return "", fmt.Errorf("inserting flair %q: %w", f.Flair, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run insert: %w", err)
	}
	return run.ID, nil
}

// GetRun returns a run by ID, or nil if it does not exist.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.conn.QueryRow(
		`SELECT id, subreddit, time_filter, post_limit, viral_percentile, min_posts,
			viral_threshold, total_posts, viral_posts, skipped, report_md, created_at
		FROM runs WHERE id = ?`, id,
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(
		`SELECT id, subreddit, time_filter, post_limit, viral_percentile, min_posts,
			viral_threshold, total_posts, viral_posts, skipped, report_md, created_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetFlairStats returns the ranked flairs for a run, in rank order.
func (db *DB) GetFlairStats(runID string) ([]FlairRow, error) {
	rows, err := db.conn.Query(
		`SELECT run_id, rank, flair, total_posts, viral_posts, viral_rate,
			avg_score, median_score, max_score, confidence, viral_score
		FROM flair_stats WHERE run_id = ? ORDER BY rank`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flairs []FlairRow
	for rows.Next() {
		var f FlairRow
		err := rows.Scan(&f.RunID, &f.Rank, &f.Flair, &f.TotalPosts, &f.ViralPosts,
			&f.ViralRate, &f.AvgScore, &f.MedianScore, &f.MaxScore, &f.Confidence, &f.ViralScore)
		if err != nil {
			return nil, err
		}
		flairs = append(flairs, f)
	}
	return flairs, rows.Err()
}

// GetStats returns aggregate counts over the run history.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&s.TotalRuns); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(DISTINCT subreddit) FROM runs").Scan(&s.Subreddits); err != nil {
		return nil, err
	}
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.Subreddit, &r.TimeFilter, &r.PostLimit, &r.ViralPercentile,
		&r.MinPosts, &r.ViralThreshold, &r.TotalPosts, &r.ViralPosts, &r.Skipped,
		&r.ReportMarkdown, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
