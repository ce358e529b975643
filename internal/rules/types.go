// Package rules loads declarative detection rules and evaluates them against
// a scanned project inventory.
package rules

// Level is a confidence or severity grade.
type Level string

// Known levels. Other values are kept as written and scored with defaults.
const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Type selects how a rule is evaluated.
type Type string

// Rule types.
const (
	TypeFileAbsence      Type = "file_absence"
	TypeDirectoryAbsence Type = "directory_absence"
	TypeFileQuality      Type = "file_quality"
)

// Rule is one validated check from a rule document. Rules are immutable once
// loaded.
type Rule struct {
	ID    string
	Type  Type
	Check []string

	// AppliesWhen gates the rule. Nil means the rule always applies.
	AppliesWhen Condition

	Confidence Level
	Severity   Level

	// Criteria are the content checks of a file_quality rule.
	Criteria []Criterion

	Recommendation *RecommendationSpec
}

// RecommendationSpec is the remediation attached to a rule.
type RecommendationSpec struct {
	Template string
	Reason   string
	Variants []Variant
}

// Variant overrides the template when its condition matches.
type Variant struct {
	Condition Condition
	Template  string
}

// SelectedRecommendation is the recommendation chosen for a detection.
type SelectedRecommendation struct {
	Template string `json:"template"`
	Reason   string `json:"reason"`
}

// Detection is the outcome of one applicable rule.
type Detection struct {
	ID             string                  `json:"id"`
	Type           Type                    `json:"type"`
	Confidence     Level                   `json:"confidence"`
	Severity       Level                   `json:"severity"`
	IssueFound     bool                    `json:"issue_found"`
	Recommendation *SelectedRecommendation `json:"recommendation,omitempty"`

	// Details lists the failed criteria of a file_quality detection.
	Details []string `json:"details,omitempty"`
}

// Recommendation is a ranked remediation derived from a positive detection.
type Recommendation struct {
	ID            string  `json:"id"`
	Template      string  `json:"template"`
	Reason        string  `json:"reason"`
	Severity      Level   `json:"severity"`
	Confidence    Level   `json:"confidence"`
	PriorityScore float64 `json:"priority_score"`
}

// Summary holds counters folded over the detections.
type Summary struct {
	TotalPatterns  int `json:"total_patterns"`
	IssuesFound    int `json:"issues_found"`
	HighSeverity   int `json:"high_severity"`
	MediumSeverity int `json:"medium_severity"`
	LowSeverity    int `json:"low_severity"`
}

// SkippedRule records a rule left out at load time.
type SkippedRule struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Result is the rule engine's output for one inventory.
type Result struct {
	ProjectName     string           `json:"project_name"`
	ProjectTypes    []string         `json:"project_types"`
	Frameworks      []string         `json:"frameworks"`
	Detections      []Detection      `json:"detections"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         Summary          `json:"summary"`
	Skipped         []SkippedRule    `json:"skipped,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
}
