// Package scrape collects ranked posts from a content source.
//
// Large requests run in two passes: a cheap ID collection walk over the
// ranked listing, then batched hydration on a bounded worker pool. Small
// requests skip the ID pass and read full records straight off the listing.
package scrape

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/flairscope/flairscope/internal/faults"
	"github.com/flairscope/flairscope/internal/reddit"
)

const (
	// DefaultBatchSize is the number of IDs hydrated per worker batch.
	DefaultBatchSize = 100
	// DefaultWorkers bounds concurrent hydration batches.
	DefaultWorkers = 4
)

// Source is the content source the scraper reads from.
type Source interface {
	// TopIDs returns up to limit post IDs in ranking order.
	TopIDs(ctx context.Context, subreddit, timeFilter string, limit int) ([]string, error)
	// Post hydrates a single post by ID.
	Post(ctx context.Context, id string) (reddit.Post, error)
	// TopPosts returns up to limit full posts straight off the listing.
	TopPosts(ctx context.Context, subreddit, timeFilter string, limit int) ([]reddit.Post, error)
}

// Result holds the outcome of one scrape run. Posts carry no defined order;
// every dropped post is accounted for in Skipped.
type Result struct {
	Posts     []reddit.Post
	Requested int
	Collected int
	Skipped   int
}

// Scraper retrieves ranked posts with bounded concurrency.
type Scraper struct {
	source    Source
	batchSize int
	workers   int
}

// New creates a Scraper. Non-positive batchSize or workers fall back to the
// defaults.
func New(source Source, batchSize, workers int) *Scraper {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scraper{source: source, batchSize: batchSize, workers: workers}
}

// Scrape retrieves up to limit top posts for a subreddit within timeFilter.
//
// A listing failure is fatal. Individual hydration failures drop the post,
// bump Result.Skipped, and let the run continue. On cancellation the scraper
// stops issuing new batches and returns the context error without salvaging
// completed work.
func (s *Scraper) Scrape(ctx context.Context, subreddit, timeFilter string, limit int) (*Result, error) {
	if subreddit == "" {
		return nil, faults.Configuration("subreddit must not be empty")
	}
	if limit <= 0 {
		return nil, faults.Configuration("post limit must be positive, got %d", limit)
	}
	if !reddit.ValidTimeFilter(timeFilter) {
		return nil, faults.Configuration("invalid time filter %q", timeFilter)
	}

	// Small requests do not justify a separate ID pass.
	if limit <= s.batchSize || s.workers == 1 {
		return s.scrapeSequential(ctx, subreddit, timeFilter, limit)
	}
	return s.scrapeBatched(ctx, subreddit, timeFilter, limit)
}

// scrapeSequential reads full records directly off the ranked listing.
func (s *Scraper) scrapeSequential(ctx context.Context, subreddit, timeFilter string, limit int) (*Result, error) {
	posts, err := s.source.TopPosts(ctx, subreddit, timeFilter, limit)
	if err != nil {
		return nil, faults.Source(err, "listing r/%s failed", subreddit)
	}

	log.Printf("Scraped %d posts from r/%s sequentially", len(posts), subreddit)
	return &Result{
		Posts:     posts,
		Requested: limit,
		Collected: len(posts),
	}, nil
}

// scrapeBatched collects IDs first, then hydrates them on a worker pool.
func (s *Scraper) scrapeBatched(ctx context.Context, subreddit, timeFilter string, limit int) (*Result, error) {
	ids, err := s.source.TopIDs(ctx, subreddit, timeFilter, limit)
	if err != nil {
		return nil, faults.Source(err, "listing r/%s failed", subreddit)
	}
	if len(ids) == 0 {
		return &Result{Requested: limit}, nil
	}

	numBatches := (len(ids) + s.batchSize - 1) / s.batchSize
	workers := s.workers
	if workers > numBatches {
		workers = numBatches
	}
	log.Printf("Hydrating %d posts from r/%s: %d batches, %d workers", len(ids), subreddit, numBatches, workers)

	var (
		mu      sync.Mutex
		posts   []reddit.Post
		skipped int64
		wg      sync.WaitGroup
	)

	batches := make(chan []string)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				hydrated := s.hydrateBatch(ctx, batch, &skipped)
				mu.Lock()
				posts = append(posts, hydrated...)
				mu.Unlock()
			}
		}()
	}

	// Dispatch consecutive batches; the last one may be short. Stop issuing
	// new batches as soon as the context is cancelled.
dispatch:
	for start := 0; start < len(ids); start += s.batchSize {
		end := start + s.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		select {
		case batches <- ids[start:end]:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(batches)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scrape of r/%s interrupted: %w", subreddit, err)
	}

	result := &Result{
		Posts:     posts,
		Requested: limit,
		Collected: len(posts),
		Skipped:   int(atomic.LoadInt64(&skipped)),
	}
	if result.Skipped > 0 {
		log.Printf("Skipped %d of %d posts during hydration", result.Skipped, len(ids))
	}
	return result, nil
}

// hydrateBatch hydrates one batch item by item, dropping failures.
func (s *Scraper) hydrateBatch(ctx context.Context, ids []string, skipped *int64) []reddit.Post {
	hydrated := make([]reddit.Post, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return hydrated
		}
		post, err := s.source.Post(ctx, id)
		if err != nil {
			atomic.AddInt64(skipped, 1)
			log.Printf("Skipping post %s: %v", id, err)
			continue
		}
		hydrated = append(hydrated, post)
	}
	return hydrated
}
