package analyze

// TopFlair names a flair together with the metric value that made it top.
type TopFlair struct {
	Flair string
	Value float64
}

// Summary holds corpus-wide metrics for one analysis run.
type Summary struct {
	TotalPosts          int
	TotalViralPosts     int
	ViralPostPercentage float64

	// TotalFlairs counts distinct flairs before the minimum-sample filter;
	// AnalyzedFlairs counts those that survived it.
	TotalFlairs    int
	AnalyzedFlairs int

	AvgScoreAllPosts      float64
	AvgScoreViralPosts    float64
	AvgCommentsAllPosts   float64
	AvgCommentsViralPosts float64

	// Nil when no flair survived the minimum-sample filter.
	MostViral       *TopFlair
	HighestAvgScore *TopFlair
}

// summarize computes corpus-wide metrics from the normalized record set and
// the ranked flair statistics.
func summarize(posts []Post, threshold float64, totalFlairs int, ranked []FlairStats) Summary {
	allScores := make([]float64, 0, len(posts))
	allComments := make([]float64, 0, len(posts))
	var viralScores, viralComments []float64

	for _, p := range posts {
		score := float64(p.Score)
		allScores = append(allScores, score)
		allComments = append(allComments, float64(p.NumComments))
		if score >= threshold {
			viralScores = append(viralScores, score)
			viralComments = append(viralComments, float64(p.NumComments))
		}
	}

	s := Summary{
		TotalPosts:            len(posts),
		TotalViralPosts:       len(viralScores),
		TotalFlairs:           totalFlairs,
		AnalyzedFlairs:        len(ranked),
		AvgScoreAllPosts:      mean(allScores),
		AvgScoreViralPosts:    mean(viralScores),
		AvgCommentsAllPosts:   mean(allComments),
		AvgCommentsViralPosts: mean(viralComments),
	}
	if len(posts) > 0 {
		s.ViralPostPercentage = float64(len(viralScores)) / float64(len(posts)) * 100
	}

	if len(ranked) > 0 {
		s.MostViral = &TopFlair{Flair: ranked[0].Flair, Value: ranked[0].ViralRate}

		best := ranked[0]
		for _, fs := range ranked[1:] {
			if fs.AvgScore > best.AvgScore {
				best = fs
			}
		}
		s.HighestAvgScore = &TopFlair{Flair: best.Flair, Value: best.AvgScore}
	}

	return s
}
