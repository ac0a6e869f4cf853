// Package pipeline orchestrates a full analysis run:
// scrape -> normalize -> aggregate -> insights.
//
// Hydration completes fully before aggregation begins; everything after the
// scrape runs single-threaded on the in-memory record set.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/flairscope/flairscope/internal/analyze"
	"github.com/flairscope/flairscope/internal/scrape"
)

// Params configures one analysis run.
type Params struct {
	Subreddit       string
	TimeFilter      string
	PostLimit       int
	ViralPercentile float64
	MinPosts        int
}

// Analysis is the output bundle of one run. It is the sole artifact the
// report, export, store, and dashboard layers consume.
type Analysis struct {
	Subreddit  string
	TimeFilter string
	RunAt      time.Time

	Requested int
	Collected int
	Skipped   int

	ViralThreshold float64
	Flairs         []analyze.FlairStats
	Posts          []analyze.Post
	Summary        analyze.Summary
	Insights       *analyze.Insights
}

// Runner wires the scraper and the aggregation together.
type Runner struct {
	scraper *scrape.Scraper
}

// New creates a Runner reading from source with the given scrape tuning.
func New(source scrape.Source, batchSize, workers int) *Runner {
	return &Runner{scraper: scrape.New(source, batchSize, workers)}
}

// Run executes the full pipeline for one subreddit.
func (r *Runner) Run(ctx context.Context, params Params) (*Analysis, error) {
	log.Printf("Step 1/3: Scraping up to %d posts from r/%s (%s)...", params.PostLimit, params.Subreddit, params.TimeFilter)
	scraped, err := r.scraper.Scrape(ctx, params.Subreddit, params.TimeFilter, params.PostLimit)
	if err != nil {
		return nil, fmt.Errorf("scraping r/%s: %w", params.Subreddit, err)
	}

	log.Printf("Step 2/3: Analyzing %d posts...", scraped.Collected)
	records := analyze.NormalizeAll(scraped.Posts)
	result, err := analyze.Analyze(records, analyze.Options{
		ViralPercentile: params.ViralPercentile,
		MinPosts:        params.MinPosts,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing r/%s: %w", params.Subreddit, err)
	}

	log.Println("Step 3/3: Building insights...")
	insights := analyze.BuildInsights(result.Posts, result.ViralThreshold)

	return &Analysis{
		Subreddit:      params.Subreddit,
		TimeFilter:     params.TimeFilter,
		RunAt:          time.Now().UTC(),
		Requested:      scraped.Requested,
		Collected:      scraped.Collected,
		Skipped:        scraped.Skipped,
		ViralThreshold: result.ViralThreshold,
		Flairs:         result.Flairs,
		Posts:          result.Posts,
		Summary:        result.Summary,
		Insights:       insights,
	}, nil
}
