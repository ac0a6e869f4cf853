package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flairscope/flairscope/internal/faults"
	"github.com/flairscope/flairscope/internal/reddit"
)

// fakeSource serves a fixed ranked listing and tracks call counts.
type fakeSource struct {
	ids        []string
	failing    map[string]error
	listErr    error
	hydrateLag time.Duration

	listCalls     int32
	topPostsCalls int32
	hydrateCalls  int32
}

func newFakeSource(n int) *fakeSource {
	s := &fakeSource{failing: map[string]error{}}
	for i := 0; i < n; i++ {
		s.ids = append(s.ids, fmt.Sprintf("p%03d", i))
	}
	return s
}

func (f *fakeSource) post(id string) reddit.Post {
	return reddit.Post{ID: id, Title: "post " + id, Score: 10, Flair: "Discussion"}
}

func (f *fakeSource) TopIDs(_ context.Context, _, _ string, limit int) ([]string, error) {
	atomic.AddInt32(&f.listCalls, 1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > len(f.ids) {
		limit = len(f.ids)
	}
	return f.ids[:limit], nil
}

func (f *fakeSource) Post(_ context.Context, id string) (reddit.Post, error) {
	atomic.AddInt32(&f.hydrateCalls, 1)
	if err, ok := f.failing[id]; ok {
		return reddit.Post{}, err
	}
	if f.hydrateLag > 0 {
		time.Sleep(f.hydrateLag)
	}
	return f.post(id), nil
}

func (f *fakeSource) TopPosts(_ context.Context, _, _ string, limit int) ([]reddit.Post, error) {
	atomic.AddInt32(&f.topPostsCalls, 1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > len(f.ids) {
		limit = len(f.ids)
	}
	posts := make([]reddit.Post, 0, limit)
	for _, id := range f.ids[:limit] {
		posts = append(posts, f.post(id))
	}
	return posts, nil
}

func TestSequentialFallbackSkipsIDPass(t *testing.T) {
	src := newFakeSource(50)
	s := New(src, 100, 4)

	result, err := s.Scrape(context.Background(), "golang", "all", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Collected != 50 {
		t.Errorf("expected 50 posts, got %d", result.Collected)
	}
	if src.listCalls != 0 {
		t.Errorf("expected no ID collection pass, got %d listing calls", src.listCalls)
	}
	if src.hydrateCalls != 0 {
		t.Errorf("expected no per-ID hydration, got %d calls", src.hydrateCalls)
	}
	if src.topPostsCalls != 1 {
		t.Errorf("expected exactly one listing scan, got %d", src.topPostsCalls)
	}
}

func TestBatchedHydration(t *testing.T) {
	src := newFakeSource(25)
	s := New(src, 10, 4)

	result, err := s.Scrape(context.Background(), "golang", "all", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Collected != 25 || len(result.Posts) != 25 {
		t.Errorf("expected 25 posts, got %d", result.Collected)
	}
	if result.Skipped != 0 {
		t.Errorf("expected no skips, got %d", result.Skipped)
	}
	// Exactly one listing call plus one hydration per ID.
	if src.listCalls != 1 {
		t.Errorf("expected 1 listing call, got %d", src.listCalls)
	}
	if src.hydrateCalls != 25 {
		t.Errorf("expected 25 hydration calls, got %d", src.hydrateCalls)
	}
}

func TestPartialFailureIsolation(t *testing.T) {
	src := newFakeSource(10)
	src.failing["p001"] = reddit.ErrNotFound
	src.failing["p004"] = reddit.ErrRateLimited
	src.failing["p007"] = errors.New("transient")
	s := New(src, 4, 2)

	result, err := s.Scrape(context.Background(), "golang", "all", 10)
	if err != nil {
		t.Fatalf("expected run to survive per-item failures, got %v", err)
	}
	if len(result.Posts) != 7 {
		t.Errorf("expected 7 surviving posts, got %d", len(result.Posts))
	}
	if result.Skipped != 3 {
		t.Errorf("expected skipped count 3, got %d", result.Skipped)
	}
}

func TestListingFailureIsFatal(t *testing.T) {
	src := newFakeSource(500)
	src.listErr = errors.New("boom")
	s := New(src, 100, 4)

	_, err := s.Scrape(context.Background(), "golang", "all", 500)
	if err == nil {
		t.Fatal("expected error from listing failure")
	}
	if !faults.IsKind(err, faults.KindSource) {
		t.Errorf("expected source fault, got %v", err)
	}
	if src.hydrateCalls != 0 {
		t.Errorf("expected no hydration after listing failure, got %d calls", src.hydrateCalls)
	}
}

func TestConcurrencyIsBounded(t *testing.T) {
	src := newFakeSource(200)
	src.hydrateLag = time.Millisecond
	workers := 3
	s := New(src, 10, workers)

	// Track in-flight hydrations via a wrapping source.
	tracked := &trackingSource{inner: src}
	s.source = tracked

	result, err := s.Scrape(context.Background(), "golang", "all", 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Collected != 200 {
		t.Errorf("expected 200 posts, got %d", result.Collected)
	}
	if got := tracked.max(); got > workers {
		t.Errorf("concurrency exceeded bound: %d > %d", got, workers)
	}
	if got := tracked.max(); got < 2 {
		t.Errorf("expected parallel hydration, peak concurrency was %d", got)
	}
}

// trackingSource counts concurrently active Post calls.
type trackingSource struct {
	inner *fakeSource

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

func (ts *trackingSource) TopIDs(ctx context.Context, sub, tf string, limit int) ([]string, error) {
	return ts.inner.TopIDs(ctx, sub, tf, limit)
}

func (ts *trackingSource) TopPosts(ctx context.Context, sub, tf string, limit int) ([]reddit.Post, error) {
	return ts.inner.TopPosts(ctx, sub, tf, limit)
}

func (ts *trackingSource) Post(ctx context.Context, id string) (reddit.Post, error) {
	ts.mu.Lock()
	ts.inFlight++
	if ts.inFlight > ts.maxInFlight {
		ts.maxInFlight = ts.inFlight
	}
	ts.mu.Unlock()

	post, err := ts.inner.Post(ctx, id)

	ts.mu.Lock()
	ts.inFlight--
	ts.mu.Unlock()
	return post, err
}

func (ts *trackingSource) max() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.maxInFlight
}

func TestShortLastBatch(t *testing.T) {
	src := newFakeSource(105)
	s := New(src, 50, 4)

	result, err := s.Scrape(context.Background(), "golang", "all", 105)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Collected != 105 {
		t.Errorf("expected 105 posts across 3 batches, got %d", result.Collected)
	}
}

func TestCancellationStopsNewBatches(t *testing.T) {
	src := newFakeSource(400)
	src.hydrateLag = 2 * time.Millisecond
	s := New(src, 10, 2)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := s.Scrape(ctx, "golang", "all", 400)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// Cancellation must leave most of the work unissued.
	if n := atomic.LoadInt32(&src.hydrateCalls); n >= 400 {
		t.Errorf("expected cancellation to stop hydration early, got %d calls", n)
	}
}

func TestParameterValidation(t *testing.T) {
	src := newFakeSource(10)
	s := New(src, 100, 4)

	cases := []struct {
		name      string
		subreddit string
		tf        string
		limit     int
	}{
		{"empty subreddit", "", "all", 10},
		{"zero limit", "golang", "all", 0},
		{"negative limit", "golang", "all", -5},
		{"bad time filter", "golang", "fortnight", 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Scrape(context.Background(), tc.subreddit, tc.tf, tc.limit)
			if !faults.IsKind(err, faults.KindConfiguration) {
				t.Errorf("expected configuration fault, got %v", err)
			}
		})
	}
}

func TestEmptyListing(t *testing.T) {
	src := newFakeSource(0)
	s := New(src, 10, 4)

	result, err := s.Scrape(context.Background(), "golang", "all", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Collected != 0 || result.Skipped != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
