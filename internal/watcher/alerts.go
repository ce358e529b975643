package watcher

import (
	"fmt"
	"sort"
	"time"

	"github.com/blackwell-systems/catalyst/internal/health"
	"github.com/blackwell-systems/catalyst/internal/rules"
)

var ratingRank = map[string]int{
	health.NeedsImprovement: 0,
	health.Fair:             1,
	health.Good:             2,
	health.Excellent:        3,
}

// Compare detects notable changes between two states and returns alerts,
// critical first.
func Compare(prev, curr *State) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareCritical(prev, curr)...)
	alerts = append(alerts, compareWarning(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	return alerts
}

// compareCritical reports a worse rating band and new high-severity issues.
func compareCritical(prev, curr *State) []Alert {
	var alerts []Alert
	now := curr.Timestamp

	if ratingRank[curr.Rating] < ratingRank[prev.Rating] {
		alerts = append(alerts, Alert{
			Level:   "critical",
			Title:   "Health rating dropped",
			Message: fmt.Sprintf("%s to %s (%d to %d)", prev.Rating, curr.Rating, prev.HealthScore, curr.HealthScore),
			Time:    now,
		})
	}
	for _, id := range added(prev.Issues, curr.Issues) {
		if curr.Issues[id] == rules.LevelHigh {
			alerts = append(alerts, newIssue("critical", id, curr.Issues[id], now))
		}
	}
	return alerts
}

// compareWarning reports a lower score within the same band and new issues
// below high severity.
func compareWarning(prev, curr *State) []Alert {
	var alerts []Alert
	now := curr.Timestamp

	if curr.HealthScore < prev.HealthScore && ratingRank[curr.Rating] >= ratingRank[prev.Rating] {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Title:   "Health score dropped",
			Message: fmt.Sprintf("%d to %d", prev.HealthScore, curr.HealthScore),
			Time:    now,
		})
	}
	for _, id := range added(prev.Issues, curr.Issues) {
		if curr.Issues[id] != rules.LevelHigh {
			alerts = append(alerts, newIssue("warning", id, curr.Issues[id], now))
		}
	}
	return alerts
}

// compareInfo reports improvements and resolved issues.
func compareInfo(prev, curr *State) []Alert {
	var alerts []Alert
	now := curr.Timestamp

	if curr.HealthScore > prev.HealthScore {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   "Health score improved",
			Message: fmt.Sprintf("%d to %d (%s)", prev.HealthScore, curr.HealthScore, curr.Rating),
			Time:    now,
		})
	}
	for _, id := range added(curr.Issues, prev.Issues) {
		alerts = append(alerts, Alert{
			Level: "info",
			Title: "Resolved: " + id,
			Time:  now,
		})
	}
	return alerts
}

func newIssue(level, id string, severity rules.Level, now time.Time) Alert {
	return Alert{
		Level:   level,
		Title:   "New issue: " + id,
		Message: fmt.Sprintf("%s severity", severity),
		Time:    now,
	}
}

// added returns the keys of curr missing from prev, sorted.
func added(prev, curr map[string]rules.Level) []string {
	var ids []string
	for id := range curr {
		if _, ok := prev[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
