// Package analyze turns normalized post records into ranked per-flair
// viral-potential statistics.
//
// The aggregation is order-independent: it depends only on set membership
// of the input records, never on their arrival order, so the concurrent
// scraper upstream needs no ordering discipline.
package analyze

import (
	"math"
	"sort"

	"github.com/flairscope/flairscope/internal/faults"
)

// Options controls the aggregation.
type Options struct {
	// ViralPercentile is the score percentile (0-100) above which a post
	// counts as viral.
	ViralPercentile float64
	// MinPosts is the minimum sample size for a flair to be ranked.
	MinPosts int
}

// DefaultOptions returns the standard analysis parameters.
func DefaultOptions() Options {
	return Options{ViralPercentile: 90, MinPosts: 5}
}

// FlairStats holds the computed statistics for one flair. Immutable once
// computed.
type FlairStats struct {
	Flair string

	TotalPosts int
	ViralPosts int
	ViralRate  float64

	AvgScore    float64
	MedianScore float64
	MaxScore    float64
	ScoreStdDev float64

	AvgComments    float64
	MedianComments float64
	MaxComments    float64

	AvgUpvoteRatio    float64
	MedianUpvoteRatio float64

	AvgEngagement float64
	MaxEngagement float64

	AvgEfficiency    float64
	MedianEfficiency float64

	Confidence        float64
	AdjustedViralRate float64
	ViralScore        float64
}

// Result is the output bundle of one analysis run.
type Result struct {
	ViralThreshold float64
	Flairs         []FlairStats // ranked, min-sample filter applied
	Posts          []Post       // full normalized record set
	Summary        Summary
}

// Analyze computes the viral threshold, groups posts by flair, and ranks
// flairs by viral rate.
func Analyze(posts []Post, opts Options) (*Result, error) {
	if opts.ViralPercentile < 0 || opts.ViralPercentile > 100 {
		return nil, faults.Configuration("viral percentile must be within 0-100, got %g", opts.ViralPercentile)
	}
	if opts.MinPosts < 1 {
		return nil, faults.Configuration("minimum posts per flair must be at least 1, got %d", opts.MinPosts)
	}
	if len(posts) == 0 {
		return nil, faults.Validation("no posts to analyze")
	}

	scores := make([]float64, len(posts))
	for i, p := range posts {
		scores[i] = float64(p.Score)
	}
	threshold := percentile(scores, opts.ViralPercentile)

	groups := make(map[string][]Post)
	for _, p := range posts {
		groups[p.Flair] = append(groups[p.Flair], p)
	}

	all := make([]FlairStats, 0, len(groups))
	for flair, group := range groups {
		all = append(all, flairStats(flair, group, threshold))
	}

	// The composite score normalizes against the best mean score across ALL
	// flairs, before the minimum-sample filter.
	var maxMeanScore float64
	for _, fs := range all {
		if fs.AvgScore > maxMeanScore {
			maxMeanScore = fs.AvgScore
		}
	}
	for i := range all {
		var scoreShare float64
		if maxMeanScore != 0 {
			scoreShare = all[i].AvgScore / maxMeanScore
		}
		all[i].ViralScore = 0.5*all[i].ViralRate + 0.3*scoreShare + 0.2*all[i].Confidence
	}

	ranked := make([]FlairStats, 0, len(all))
	for _, fs := range all {
		if fs.TotalPosts >= opts.MinPosts {
			ranked = append(ranked, fs)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ViralRate != ranked[j].ViralRate {
			return ranked[i].ViralRate > ranked[j].ViralRate
		}
		return ranked[i].Flair < ranked[j].Flair
	})

	return &Result{
		ViralThreshold: threshold,
		Flairs:         ranked,
		Posts:          posts,
		Summary:        summarize(posts, threshold, len(groups), ranked),
	}, nil
}

// flairStats computes the descriptive statistics for one flair group.
func flairStats(flair string, group []Post, threshold float64) FlairStats {
	n := len(group)
	scores := make([]float64, n)
	comments := make([]float64, n)
	ratios := make([]float64, n)
	engagements := make([]float64, n)
	efficiencies := make([]float64, n)
	viral := 0

	for i, p := range group {
		scores[i] = float64(p.Score)
		comments[i] = float64(p.NumComments)
		ratios[i] = p.UpvoteRatio
		engagements[i] = float64(p.Engagement)
		efficiencies[i] = p.Efficiency
		if float64(p.Score) >= threshold {
			viral++
		}
	}

	viralRate := float64(viral) / float64(n)
	confidence := 1 - 1/math.Sqrt(float64(n))

	return FlairStats{
		Flair:             flair,
		TotalPosts:        n,
		ViralPosts:        viral,
		ViralRate:         viralRate,
		AvgScore:          mean(scores),
		MedianScore:       median(scores),
		MaxScore:          maxOf(scores),
		ScoreStdDev:       stdDev(scores),
		AvgComments:       mean(comments),
		MedianComments:    median(comments),
		MaxComments:       maxOf(comments),
		AvgUpvoteRatio:    mean(ratios),
		MedianUpvoteRatio: median(ratios),
		AvgEngagement:     mean(engagements),
		MaxEngagement:     maxOf(engagements),
		AvgEfficiency:     mean(efficiencies),
		MedianEfficiency:  median(efficiencies),
		Confidence:        confidence,
		AdjustedViralRate: viralRate * confidence,
	}
}
