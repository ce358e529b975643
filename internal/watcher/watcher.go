// Package watcher re-analyzes a project at a regular interval and emits
// alerts when its health changes.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/catalyst/internal/analysis"
	"github.com/blackwell-systems/catalyst/internal/rules"
)

// State captures the outcome of one analysis.
type State struct {
	Timestamp   time.Time
	HealthScore int
	Rating      string

	// Issues maps the id of every flagged rule to its severity.
	Issues map[string]rules.Level
}

// Alert represents a notable change between two analyses.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Analyzer runs one analysis of root. *analysis.Pipeline satisfies it.
type Analyzer interface {
	Run(root string) (*analysis.Analysis, error)
}

// Watcher analyzes one project root at a regular interval and emits alerts
// when notable changes are detected.
type Watcher struct {
	root          string
	interval      time.Duration
	analyzer      Analyzer
	previous      *State
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
	now           func() time.Time
}

// New creates a Watcher for root.
func New(root string, interval time.Duration, a Analyzer, alertFn func(Alert)) *Watcher {
	return &Watcher{
		root:          root,
		interval:      interval,
		analyzer:      a,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		now:           time.Now,
	}
}

// Previous returns the last recorded state, or nil before the first
// snapshot.
func (w *Watcher) Previous() *State {
	return w.previous
}

// Baseline analyzes the project and records the result as the state later
// checks compare against.
func (w *Watcher) Baseline() (*State, error) {
	state, err := w.Snapshot()
	if err != nil {
		return nil, err
	}
	w.previous = state
	return state, nil
}

// Run takes an initial snapshot unless Baseline was called, then checks at
// every interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.previous == nil {
		if _, err := w.Baseline(); err != nil {
			return fmt.Errorf("initial snapshot: %w", err)
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, a := range w.Check() {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check performs a single cycle: takes a new snapshot, compares it against
// the previous state, records it and returns any alerts. Alerts identical
// to the previous cycle's are suppressed, so a persistent analysis failure
// is reported once.
func (w *Watcher) Check() []Alert {
	var raw []Alert
	curr, err := w.Snapshot()
	switch {
	case err != nil:
		raw = []Alert{{
			Level:   "warning",
			Title:   "Analysis failed",
			Message: err.Error(),
			Time:    w.now(),
		}}
	case w.previous != nil:
		raw = Compare(w.previous, curr)
	}

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	if curr != nil {
		w.previous = curr
	}
	return alerts
}

// Snapshot analyzes the project once.
func (w *Watcher) Snapshot() (*State, error) {
	a, err := w.analyzer.Run(w.root)
	if err != nil {
		return nil, err
	}
	state := &State{
		Timestamp:   w.now(),
		HealthScore: a.HealthScore,
		Rating:      a.Rating,
		Issues:      make(map[string]rules.Level),
	}
	for _, d := range a.Result.Detections {
		if d.IssueFound {
			state.Issues[d.ID] = d.Severity
		}
	}
	return state, nil
}
