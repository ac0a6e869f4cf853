package database

// Run holds one persisted analysis run.
type Run struct {
	ID              string
	Subreddit       string
	TimeFilter      string
	PostLimit       int
	ViralPercentile float64
	MinPosts        int
	ViralThreshold  float64
	TotalPosts      int
	ViralPosts      int
	Skipped         int
	ReportMarkdown  string
	CreatedAt       *string
}

// FlairRow is one ranked flair from a persisted run.
type FlairRow struct {
	RunID       string
	Rank        int
	Flair       string
	TotalPosts  int
	ViralPosts  int
	ViralRate   float64
	AvgScore    float64
	MedianScore float64
	MaxScore    float64
	Confidence  float64
	ViralScore  float64
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalRuns  int
	Subreddits int
}
