// Package report renders an analysis bundle as a markdown report.
//
// The same report feeds the CLI output, the markdown export, and the web
// dashboard (where it is converted to HTML).
package report

import (
	"fmt"
	"strings"

	"github.com/flairscope/flairscope/internal/analyze"
	"github.com/flairscope/flairscope/internal/pipeline"
)

// maxRankedRows caps the rankings table; the full list is always available
// in the CSV/JSON exports.
const maxRankedRows = 20

// Render produces the markdown report for one analysis run.
func Render(a *pipeline.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# r/%s flair analysis\n\n", a.Subreddit)
	fmt.Fprintf(&b, "_%s · top posts (%s) · %d requested, %d analyzed, %d skipped_\n\n",
		a.RunAt.Format("2006-01-02 15:04 UTC"), timeFilterLabel(a.TimeFilter),
		a.Requested, a.Collected, a.Skipped)

	writeSummary(&b, a)
	writeRankings(&b, a.Flairs)
	if a.Insights != nil {
		writeInsights(&b, a.Insights)
	}

	return b.String()
}

func writeSummary(b *strings.Builder, a *pipeline.Analysis) {
	s := a.Summary
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(b, "- Viral threshold score: **%.2f**\n", a.ViralThreshold)
	fmt.Fprintf(b, "- Viral posts: %d of %d (%.1f%%)\n", s.TotalViralPosts, s.TotalPosts, s.ViralPostPercentage)
	fmt.Fprintf(b, "- Flairs: %d total, %d with enough data\n", s.TotalFlairs, s.AnalyzedFlairs)
	fmt.Fprintf(b, "- Avg score: %.1f all posts, %.1f viral posts\n", s.AvgScoreAllPosts, s.AvgScoreViralPosts)
	fmt.Fprintf(b, "- Avg comments: %.1f all posts, %.1f viral posts\n", s.AvgCommentsAllPosts, s.AvgCommentsViralPosts)
	if s.MostViral != nil {
		fmt.Fprintf(b, "- Most viral flair: **%s** (%s viral rate)\n", s.MostViral.Flair, percent(s.MostViral.Value))
	}
	if s.HighestAvgScore != nil {
		fmt.Fprintf(b, "- Highest avg score flair: **%s** (%.1f)\n", s.HighestAvgScore.Flair, s.HighestAvgScore.Value)
	}
	b.WriteString("\n")
}

func writeRankings(b *strings.Builder, flairs []analyze.FlairStats) {
	b.WriteString("## Flair rankings\n\n")
	if len(flairs) == 0 {
		b.WriteString("No flair had enough posts to rank.\n\n")
		return
	}

	b.WriteString("| # | Flair | Viral Rate | Posts | Avg Score | Median | Confidence | Viral Score |\n")
	b.WriteString("|--:|:------|-----------:|------:|----------:|-------:|-----------:|------------:|\n")
	for i, fs := range flairs {
		if i >= maxRankedRows {
			fmt.Fprintf(b, "\n_(showing %d of %d flairs)_\n", maxRankedRows, len(flairs))
			break
		}
		fmt.Fprintf(b, "| %d | %s | %s | %d | %.1f | %.1f | %.2f | %.4f |\n",
			i+1, escapePipes(fs.Flair), percent(fs.ViralRate), fs.TotalPosts,
			fs.AvgScore, fs.MedianScore, fs.Confidence, fs.ViralScore)
	}
	b.WriteString("\n")
}

func writeInsights(b *strings.Builder, ins *analyze.Insights) {
	if ti := ins.Time; ti != nil {
		b.WriteString("## Posting time\n\n")
		fmt.Fprintf(b, "- Best hour: %02d:00 UTC (%s viral rate)\n", ti.BestHour, percent(ti.BestHourViralRate))
		fmt.Fprintf(b, "- Best day: %s (%s viral rate)\n\n", ti.BestDay, percent(ti.BestDayViralRate))
	}

	if ci := ins.Content; ci != nil && len(ci.Types) > 0 {
		b.WriteString("## Content types\n\n")
		b.WriteString("| Type | Posts | Viral Rate | Avg Score |\n")
		b.WriteString("|:-----|------:|-----------:|----------:|\n")
		for _, cs := range ci.Types {
			fmt.Fprintf(b, "| %s | %d | %s | %.1f |\n", cs.Type, cs.Posts, percent(cs.ViralRate), cs.AvgScore)
		}
		fmt.Fprintf(b, "\nBest content type: **%s** (%s viral rate)\n\n", ci.BestType, percent(ci.BestTypeViralRate))
	}

	if len(ins.Correlations) > 0 {
		b.WriteString("## Correlation with virality\n\n")
		for _, c := range ins.Correlations {
			fmt.Fprintf(b, "- %s: %+.3f\n", c.Metric, c.Coefficient)
		}
		b.WriteString("\n")
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func timeFilterLabel(tf string) string {
	if tf == "all" {
		return "all time"
	}
	return "past " + tf
}

// escapePipes keeps flair text from breaking the markdown table.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
