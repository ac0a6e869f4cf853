package analyze

import (
	"testing"
	"time"

	"github.com/flairscope/flairscope/internal/reddit"
)

func TestContentTypeClassification(t *testing.T) {
	cases := []struct {
		url    string
		isSelf bool
		want   string
	}{
		{"https://i.redd.it/xyz.jpg", false, "image"},
		{"https://imgur.com/gallery/abc", false, "image"},
		{"https://v.redd.it/xyz", false, "video"},
		{"https://www.youtube.com/watch?v=abc", false, "video"},
		{"https://youtu.be/abc", false, "video"},
		{"https://reddit.com/r/golang/comments/x", true, "text"},
		{"https://example.com/article", false, "link"},
	}
	for _, tc := range cases {
		p := Post{URL: tc.url, IsSelf: tc.isSelf}
		if got := ContentType(p); got != tc.want {
			t.Errorf("ContentType(%q, self=%v) = %q, want %q", tc.url, tc.isSelf, got, tc.want)
		}
	}
}

func TestTimeInsightsFindBestSlots(t *testing.T) {
	at := func(day time.Time, hour, score int) Post {
		return Normalize(reddit.Post{
			ID:      day.Format("02") + "-" + time.Now().String(),
			Score:   score,
			Created: time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC),
		})
	}
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	posts := []Post{
		at(monday, 9, 100),  // viral
		at(monday, 9, 100),  // viral
		at(tuesday, 14, 10), // not viral
		at(tuesday, 14, 5),  // not viral
	}

	insights := BuildInsights(posts, 50)
	ti := insights.Time
	if ti == nil {
		t.Fatal("expected time insights")
	}
	if ti.BestHour != 9 {
		t.Errorf("BestHour = %d, want 9", ti.BestHour)
	}
	if ti.BestDay != "Monday" {
		t.Errorf("BestDay = %q, want Monday", ti.BestDay)
	}
	if ti.BestDayViralRate != 1 {
		t.Errorf("BestDayViralRate = %g, want 1", ti.BestDayViralRate)
	}
	if len(ti.Hours) != 2 || len(ti.Days) != 2 {
		t.Errorf("expected 2 hour and 2 day buckets, got %d/%d", len(ti.Hours), len(ti.Days))
	}
}

func TestContentInsights(t *testing.T) {
	posts := []Post{
		{URL: "https://i.redd.it/a.jpg", Score: 100},
		{URL: "https://i.redd.it/b.jpg", Score: 90},
		{URL: "https://example.com", Score: 5},
	}

	insights := BuildInsights(posts, 50)
	ci := insights.Content
	if ci == nil {
		t.Fatal("expected content insights")
	}
	if ci.BestType != "image" {
		t.Errorf("BestType = %q, want image", ci.BestType)
	}
	if ci.BestTypeViralRate != 1 {
		t.Errorf("BestTypeViralRate = %g, want 1", ci.BestTypeViralRate)
	}
}

func TestCorrelationsRankScoreFirst(t *testing.T) {
	// Score perfectly separates viral from non-viral; upvote ratio is flat.
	var posts []Post
	for i := 0; i < 10; i++ {
		score := 10
		if i < 5 {
			score = 100
		}
		posts = append(posts, Normalize(reddit.Post{
			ID: string(rune('a' + i)), Score: score, UpvoteRatio: 0.5, NumComments: i,
		}))
	}

	insights := BuildInsights(posts, 50)
	if len(insights.Correlations) == 0 {
		t.Fatal("expected correlations")
	}
	if insights.Correlations[0].Metric != "score" && insights.Correlations[0].Metric != "engagement" {
		t.Errorf("expected score-driven metric first, got %q", insights.Correlations[0].Metric)
	}
	for _, c := range insights.Correlations {
		if c.Metric == "upvote_ratio" {
			t.Error("zero-variance metric should be omitted")
		}
	}
}

func TestBuildInsightsEmptyInput(t *testing.T) {
	insights := BuildInsights(nil, 10)
	if insights.Time != nil || insights.Content != nil || insights.Correlations != nil {
		t.Errorf("expected empty insights, got %+v", insights)
	}
}

func TestPearson(t *testing.T) {
	r, ok := pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	if !ok || !almostEqual(r, 1) {
		t.Errorf("perfect correlation = %g (ok=%v), want 1", r, ok)
	}
	r, ok = pearson([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	if !ok || !almostEqual(r, -1) {
		t.Errorf("perfect anticorrelation = %g (ok=%v), want -1", r, ok)
	}
	if _, ok := pearson([]float64{5, 5, 5}, []float64{1, 2, 3}); ok {
		t.Error("zero variance should report ok=false")
	}
}
