package rules

import "sort"

// Default scoring tables.
var (
	DefaultConfidenceWeights  = map[Level]float64{LevelHigh: 1.0, LevelMedium: 0.7, LevelLow: 0.4}
	DefaultSeverityBase       = map[Level]float64{LevelHigh: 10, LevelMedium: 5, LevelLow: 2}
	DefaultSeverityMultiplier = map[Level]float64{LevelHigh: 1.0, LevelMedium: 0.6, LevelLow: 0.3}
)

// Fallbacks for levels missing from a table.
const (
	defaultConfidenceWeight   = 0.7
	defaultSeverityBase       = 5
	defaultSeverityMultiplier = 0.6
)

// Scorer turns a (confidence, severity) pair into a priority score:
//
//	confidence_weight(confidence) * severity_multiplier(severity) * severity_base(severity)
type Scorer struct {
	ConfidenceWeights  map[Level]float64
	SeverityBase       map[Level]float64
	SeverityMultiplier map[Level]float64
}

// NewScorer returns a Scorer using the default tables.
func NewScorer() *Scorer {
	return &Scorer{
		ConfidenceWeights:  DefaultConfidenceWeights,
		SeverityBase:       DefaultSeverityBase,
		SeverityMultiplier: DefaultSeverityMultiplier,
	}
}

// WithConfidenceWeights returns a copy of s whose confidence table is the
// default table overlaid with weights.
func (s *Scorer) WithConfidenceWeights(weights map[Level]float64) *Scorer {
	merged := make(map[Level]float64, len(s.ConfidenceWeights)+len(weights))
	for k, v := range s.ConfidenceWeights {
		merged[k] = v
	}
	for k, v := range weights {
		merged[k] = v
	}
	cp := *s
	cp.ConfidenceWeights = merged
	return &cp
}

// Priority computes the ordering key for a recommendation.
func (s *Scorer) Priority(confidence, severity Level) float64 {
	return lookup(s.ConfidenceWeights, confidence, defaultConfidenceWeight) *
		lookup(s.SeverityMultiplier, severity, defaultSeverityMultiplier) *
		lookup(s.SeverityBase, severity, defaultSeverityBase)
}

func lookup(table map[Level]float64, l Level, fallback float64) float64 {
	if v, ok := table[l]; ok {
		return v
	}
	return fallback
}

// Rank sorts recommendations by PriorityScore in descending order. Equal
// scores keep their input order. The input slice is not modified.
func Rank(recs []Recommendation) []Recommendation {
	sorted := make([]Recommendation, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriorityScore > sorted[j].PriorityScore
	})
	return sorted
}
