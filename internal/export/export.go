// Package export writes analysis results to disk as CSV, JSON and markdown.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/flairscope/flairscope/internal/analyze"
	"github.com/flairscope/flairscope/internal/pipeline"
)

// Files lists the paths written by All.
type Files struct {
	FlairCSV string
	PostsCSV string
	JSON     string
	Markdown string
}

// BaseName builds the timestamped file stem for a run,
// e.g. "flairscope_golang_20260823_140502".
func BaseName(a *pipeline.Analysis) string {
	return fmt.Sprintf("flairscope_%s_%s", a.Subreddit, a.RunAt.Format("20060102_150405"))
}

// All writes every export format into dir, creating it if needed.
func All(a *pipeline.Analysis, reportMD, dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	base := filepath.Join(dir, BaseName(a))
	f := &Files{
		FlairCSV: base + "_flairs.csv",
		PostsCSV: base + "_posts.csv",
		JSON:     base + ".json",
		Markdown: base + ".md",
	}

	if err := FlairCSV(a.Flairs, f.FlairCSV); err != nil {
		return nil, err
	}
	if err := PostsCSV(a.Posts, a.ViralThreshold, f.PostsCSV); err != nil {
		return nil, err
	}
	if err := JSON(a, f.JSON); err != nil {
		return nil, err
	}
	if err := os.WriteFile(f.Markdown, []byte(reportMD), 0o644); err != nil {
		return nil, fmt.Errorf("writing markdown export: %w", err)
	}
	return f, nil
}

// FlairCSV writes the ranked flair table.
func FlairCSV(flairs []analyze.FlairStats, path string) error {
	return writeCSV(path, func(w *csv.Writer) error {
		header := []string{
			"rank", "flair", "total_posts", "viral_posts", "viral_rate",
			"avg_score", "median_score", "max_score", "std_score",
			"avg_comments", "median_comments", "avg_upvote_ratio",
			"engagement", "efficiency", "confidence", "adjusted_viral_rate", "viral_score",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for i, fs := range flairs {
			row := []string{
				strconv.Itoa(i + 1),
				fs.Flair,
				strconv.Itoa(fs.TotalPosts),
				strconv.Itoa(fs.ViralPosts),
				f64(fs.ViralRate),
				f64(fs.AvgScore),
				f64(fs.MedianScore),
				f64(fs.MaxScore),
				f64(fs.ScoreStdDev),
				f64(fs.AvgComments),
				f64(fs.MedianComments),
				f64(fs.AvgUpvoteRatio),
				f64(fs.AvgEngagement),
				f64(fs.AvgEfficiency),
				f64(fs.Confidence),
				f64(fs.AdjustedViralRate),
				f64(fs.ViralScore),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// PostsCSV writes the normalized post dataset. The threshold marks each
// post's is_viral column.
func PostsCSV(posts []analyze.Post, threshold float64, path string) error {
	return writeCSV(path, func(w *csv.Writer) error {
		header := []string{
			"id", "title", "flair", "score", "num_comments", "upvote_ratio",
			"post_date", "post_hour", "post_day", "comment_ratio",
			"engagement", "efficiency", "is_viral",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, p := range posts {
			row := []string{
				p.ID,
				p.Title,
				p.Flair,
				strconv.Itoa(p.Score),
				strconv.Itoa(p.NumComments),
				f64(p.UpvoteRatio),
				p.PostDate,
				strconv.Itoa(p.PostHour),
				p.PostDay,
				f64(p.CommentRatio),
				strconv.Itoa(p.Engagement),
				f64(p.Efficiency),
				strconv.FormatBool(float64(p.Score) >= threshold),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// JSON writes the run metadata, summary and rankings (posts omitted).
func JSON(a *pipeline.Analysis, path string) error {
	doc := struct {
		Subreddit      string               `json:"subreddit"`
		TimeFilter     string               `json:"time_filter"`
		RunAt          time.Time            `json:"run_at"`
		Requested      int                  `json:"requested"`
		Collected      int                  `json:"collected"`
		Skipped        int                  `json:"skipped"`
		ViralThreshold float64              `json:"viral_threshold"`
		Summary        analyze.Summary      `json:"summary"`
		Flairs         []analyze.FlairStats `json:"flairs"`
		Insights       *analyze.Insights    `json:"insights,omitempty"`
	}{
		Subreddit:      a.Subreddit,
		TimeFilter:     a.TimeFilter,
		RunAt:          a.RunAt,
		Requested:      a.Requested,
		Collected:      a.Collected,
		Skipped:        a.Skipped,
		ViralThreshold: a.ViralThreshold,
		Summary:        a.Summary,
		Flairs:         a.Flairs,
		Insights:       a.Insights,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing JSON export: %w", err)
	}
	return nil
}

func writeCSV(path string, fill func(w *csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := fill(w); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}

func f64(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
