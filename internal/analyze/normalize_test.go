package analyze

import (
	"testing"
	"time"

	"github.com/flairscope/flairscope/internal/reddit"
)

func TestNormalizeDerivedFields(t *testing.T) {
	created := time.Date(2026, 3, 4, 17, 30, 0, 0, time.UTC) // a Wednesday
	p := Normalize(reddit.Post{
		ID:          "abc",
		Score:       200,
		NumComments: 50,
		Created:     created,
		Flair:       "Discussion",
	})

	if p.PostDate != "2026-03-04" {
		t.Errorf("PostDate = %q", p.PostDate)
	}
	if p.PostHour != 17 {
		t.Errorf("PostHour = %d", p.PostHour)
	}
	if p.PostDay != "Wednesday" {
		t.Errorf("PostDay = %q", p.PostDay)
	}
	if p.CommentRatio != 0.25 {
		t.Errorf("CommentRatio = %g, want 0.25", p.CommentRatio)
	}
	if p.Engagement != 250 {
		t.Errorf("Engagement = %d, want 250", p.Engagement)
	}
	if p.Efficiency != 4 {
		t.Errorf("Efficiency = %g, want 4", p.Efficiency)
	}
}

func TestNormalizeMissingFlair(t *testing.T) {
	p := Normalize(reddit.Post{ID: "x"})
	if p.Flair != NoFlair {
		t.Errorf("expected %q sentinel, got %q", NoFlair, p.Flair)
	}
}

func TestNormalizeClampsDenominators(t *testing.T) {
	// Negative score must not flip the comment ratio sign or divide by zero.
	p := Normalize(reddit.Post{ID: "neg", Score: -12, NumComments: 6})
	if p.CommentRatio != 6 {
		t.Errorf("CommentRatio = %g, want 6 (denominator clamped to 1)", p.CommentRatio)
	}

	p = Normalize(reddit.Post{ID: "quiet", Score: 40, NumComments: 0})
	if p.Efficiency != 40 {
		t.Errorf("Efficiency = %g, want 40 (denominator clamped to 1)", p.Efficiency)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	raw := reddit.Post{
		ID: "d", Score: 7, NumComments: 3, UpvoteRatio: 0.8,
		Created: time.Unix(1700000000, 0).UTC(), Flair: "News",
	}
	a := Normalize(raw)
	b := Normalize(raw)
	if a != b {
		t.Errorf("Normalize not deterministic: %+v vs %+v", a, b)
	}
}
