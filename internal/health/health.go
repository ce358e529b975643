// Package health condenses a rule summary into a 0-100 score.
package health

import "github.com/blackwell-systems/catalyst/internal/rules"

// Penalty weights.
const (
	highPenalty   = 20
	mediumPenalty = 10
)

// Rating bands.
const (
	Excellent        = "Excellent"
	Good             = "Good"
	Fair             = "Fair"
	NeedsImprovement = "Needs Improvement"
)

// Score returns
//
//	clamp(0, 100, 100 - issues/total*100 - high*20 - medium*10)
//
// truncated toward zero. A summary with no patterns has no issue-ratio
// penalty. Low-severity issues only count through the ratio.
func Score(s rules.Summary) int {
	var ratio float64
	if s.TotalPatterns > 0 {
		ratio = float64(s.IssuesFound) / float64(s.TotalPatterns) * 100
	}
	score := 100 - ratio - float64(s.HighSeverity*highPenalty) - float64(s.MediumSeverity*mediumPenalty)
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return int(score)
}

// Rating names the band a score falls in.
func Rating(score int) string {
	switch {
	case score >= 90:
		return Excellent
	case score >= 75:
		return Good
	case score >= 50:
		return Fair
	default:
		return NeedsImprovement
	}
}
