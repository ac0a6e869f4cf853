package analyze

import (
	"time"

	"github.com/flairscope/flairscope/internal/reddit"
)

// NoFlair is the sentinel category for posts without a flair.
const NoFlair = "No Flair"

// Post is a normalized post record with derived fields.
type Post struct {
	ID                string
	Title             string
	Score             int
	UpvoteRatio       float64
	NumComments       int
	Created           time.Time
	Flair             string
	Author            string
	IsOriginalContent bool
	IsSelf            bool
	Over18            bool
	Spoiler           bool
	Stickied          bool
	Permalink         string
	URL               string
	Domain            string
	SelftextLength    int
	Gilded            int

	PostDate     string // YYYY-MM-DD
	PostHour     int    // 0-23
	PostDay      string // weekday name
	CommentRatio float64
	Engagement   int
	Efficiency   float64
}

// Normalize derives a Post from a raw record. It is pure: the same input
// always yields the same output.
func Normalize(p reddit.Post) Post {
	flair := p.Flair
	if flair == "" {
		flair = NoFlair
	}

	// Ratio denominators are clamped to 1 so zero or negative counts never
	// divide by zero.
	scoreDenom := p.Score
	if scoreDenom < 1 {
		scoreDenom = 1
	}
	commentDenom := p.NumComments
	if commentDenom < 1 {
		commentDenom = 1
	}

	return Post{
		ID:                p.ID,
		Title:             p.Title,
		Score:             p.Score,
		UpvoteRatio:       p.UpvoteRatio,
		NumComments:       p.NumComments,
		Created:           p.Created,
		Flair:             flair,
		Author:            p.Author,
		IsOriginalContent: p.IsOriginalContent,
		IsSelf:            p.IsSelf,
		Over18:            p.Over18,
		Spoiler:           p.Spoiler,
		Stickied:          p.Stickied,
		Permalink:         p.Permalink,
		URL:               p.URL,
		Domain:            p.Domain,
		SelftextLength:    p.SelftextLength,
		Gilded:            p.Gilded,

		PostDate:     p.Created.Format("2006-01-02"),
		PostHour:     p.Created.Hour(),
		PostDay:      p.Created.Weekday().String(),
		CommentRatio: float64(p.NumComments) / float64(scoreDenom),
		Engagement:   p.Score + p.NumComments,
		Efficiency:   float64(p.Score) / float64(commentDenom),
	}
}

// NormalizeAll normalizes a whole scrape result.
func NormalizeAll(posts []reddit.Post) []Post {
	normalized := make([]Post, 0, len(posts))
	for _, p := range posts {
		normalized = append(normalized, Normalize(p))
	}
	return normalized
}
