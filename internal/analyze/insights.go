package analyze

import (
	"math"
	"sort"
	"strings"
)

// HourStat aggregates posts created in one hour of the day.
type HourStat struct {
	Hour      int
	Posts     int
	ViralRate float64
	AvgScore  float64
}

// DayStat aggregates posts created on one weekday.
type DayStat struct {
	Day       string
	Posts     int
	ViralRate float64
	AvgScore  float64
}

// TimeInsights describes how posting time relates to virality.
type TimeInsights struct {
	BestHour          int
	BestHourViralRate float64
	BestDay           string
	BestDayViralRate  float64
	Hours             []HourStat
	Days              []DayStat
}

// ContentStat aggregates posts of one content type.
type ContentStat struct {
	Type        string
	Posts       int
	ViralRate   float64
	AvgScore    float64
	AvgComments float64
}

// ContentInsights describes how content type relates to virality.
type ContentInsights struct {
	BestType          string
	BestTypeViralRate float64
	Types             []ContentStat
}

// Correlation pairs a post metric with its Pearson correlation against
// virality.
type Correlation struct {
	Metric      string
	Coefficient float64
}

// Insights bundles the advanced analyses.
type Insights struct {
	Time         *TimeInsights
	Content      *ContentInsights
	Correlations []Correlation
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// BuildInsights runs the time, content-type, and correlation analyses over
// the normalized record set. Virality is judged against threshold.
func BuildInsights(posts []Post, threshold float64) *Insights {
	if len(posts) == 0 {
		return &Insights{}
	}
	return &Insights{
		Time:         timeInsights(posts, threshold),
		Content:      contentInsights(posts, threshold),
		Correlations: viralCorrelations(posts, threshold),
	}
}

func isViral(p Post, threshold float64) bool {
	return float64(p.Score) >= threshold
}

func timeInsights(posts []Post, threshold float64) *TimeInsights {
	type bucket struct {
		posts, viral int
		scoreSum     float64
	}

	hours := make(map[int]*bucket)
	days := make(map[string]*bucket)
	for _, p := range posts {
		h, ok := hours[p.PostHour]
		if !ok {
			h = &bucket{}
			hours[p.PostHour] = h
		}
		d, ok := days[p.PostDay]
		if !ok {
			d = &bucket{}
			days[p.PostDay] = d
		}
		for _, b := range []*bucket{h, d} {
			b.posts++
			b.scoreSum += float64(p.Score)
			if isViral(p, threshold) {
				b.viral++
			}
		}
	}

	ti := &TimeInsights{BestHour: -1}
	for hour := 0; hour < 24; hour++ {
		b, ok := hours[hour]
		if !ok {
			continue
		}
		rate := float64(b.viral) / float64(b.posts)
		ti.Hours = append(ti.Hours, HourStat{
			Hour:      hour,
			Posts:     b.posts,
			ViralRate: rate,
			AvgScore:  b.scoreSum / float64(b.posts),
		})
		if ti.BestHour < 0 || rate > ti.BestHourViralRate {
			ti.BestHour = hour
			ti.BestHourViralRate = rate
		}
	}

	for _, day := range weekdays {
		b, ok := days[day]
		if !ok {
			continue
		}
		rate := float64(b.viral) / float64(b.posts)
		ti.Days = append(ti.Days, DayStat{
			Day:       day,
			Posts:     b.posts,
			ViralRate: rate,
			AvgScore:  b.scoreSum / float64(b.posts),
		})
		if ti.BestDay == "" || rate > ti.BestDayViralRate {
			ti.BestDay = day
			ti.BestDayViralRate = rate
		}
	}

	return ti
}

// ContentType classifies a post as link, text, image, or video.
func ContentType(p Post) string {
	url := strings.ToLower(p.URL)
	switch {
	case strings.Contains(url, "v.redd.it"), strings.Contains(url, "youtube.com"), strings.Contains(url, "youtu.be"):
		return "video"
	case strings.Contains(url, "i.redd.it"), strings.Contains(url, "imgur.com"):
		return "image"
	case p.IsSelf:
		return "text"
	default:
		return "link"
	}
}

func contentInsights(posts []Post, threshold float64) *ContentInsights {
	type bucket struct {
		posts, viral int
		scoreSum     float64
		commentSum   float64
	}

	buckets := make(map[string]*bucket)
	for _, p := range posts {
		ct := ContentType(p)
		b, ok := buckets[ct]
		if !ok {
			b = &bucket{}
			buckets[ct] = b
		}
		b.posts++
		b.scoreSum += float64(p.Score)
		b.commentSum += float64(p.NumComments)
		if isViral(p, threshold) {
			b.viral++
		}
	}

	ci := &ContentInsights{}
	types := make([]string, 0, len(buckets))
	for ct := range buckets {
		types = append(types, ct)
	}
	sort.Strings(types)

	for _, ct := range types {
		b := buckets[ct]
		rate := float64(b.viral) / float64(b.posts)
		ci.Types = append(ci.Types, ContentStat{
			Type:        ct,
			Posts:       b.posts,
			ViralRate:   rate,
			AvgScore:    b.scoreSum / float64(b.posts),
			AvgComments: b.commentSum / float64(b.posts),
		})
		if ci.BestType == "" || rate > ci.BestTypeViralRate {
			ci.BestType = ct
			ci.BestTypeViralRate = rate
		}
	}

	return ci
}

// viralCorrelations computes Pearson correlations of numeric post metrics
// against the viral indicator, sorted by coefficient descending. Metrics
// with zero variance are omitted.
func viralCorrelations(posts []Post, threshold float64) []Correlation {
	viral := make([]float64, len(posts))
	for i, p := range posts {
		if isViral(p, threshold) {
			viral[i] = 1
		}
	}

	metrics := []struct {
		name  string
		value func(Post) float64
	}{
		{"score", func(p Post) float64 { return float64(p.Score) }},
		{"upvote_ratio", func(p Post) float64 { return p.UpvoteRatio }},
		{"num_comments", func(p Post) float64 { return float64(p.NumComments) }},
		{"comment_ratio", func(p Post) float64 { return p.CommentRatio }},
		{"engagement", func(p Post) float64 { return float64(p.Engagement) }},
		{"efficiency", func(p Post) float64 { return p.Efficiency }},
		{"selftext_length", func(p Post) float64 { return float64(p.SelftextLength) }},
		{"gilded", func(p Post) float64 { return float64(p.Gilded) }},
	}

	var correlations []Correlation
	for _, m := range metrics {
		xs := make([]float64, len(posts))
		for i, p := range posts {
			xs[i] = m.value(p)
		}
		r, ok := pearson(xs, viral)
		if !ok {
			continue
		}
		correlations = append(correlations, Correlation{Metric: m.name, Coefficient: r})
	}

	sort.Slice(correlations, func(i, j int) bool {
		if correlations[i].Coefficient != correlations[j].Coefficient {
			return correlations[i].Coefficient > correlations[j].Coefficient
		}
		return correlations[i].Metric < correlations[j].Metric
	})
	return correlations
}

// pearson returns the correlation coefficient of xs and ys, or ok=false
// when either series has zero variance.
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	if n < 2 {
		return 0, false
	}

	mx, my := mean(xs), mean(ys)
	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}
