package rules

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/blackwell-systems/catalyst/internal/scanner"
)

// configExtensions mark directory_absence markers that name a file.
var configExtensions = []string{".yml", ".yaml", ".json", ".toml", ".xml"}

// evalInput is what an evaluator sees for one rule.
type evalInput struct {
	inv  *scanner.Inventory
	fsys fs.FS
}

// outcome is an evaluator's verdict.
type outcome struct {
	issue   bool
	details []string
	warning string
}

type evaluator func(r *Rule, in evalInput) outcome

// evaluators is the dispatch table over the closed Type set. A Type that is
// not a key here is rejected at load time.
var evaluators = map[Type]evaluator{
	TypeFileAbsence:      evalFileAbsence,
	TypeDirectoryAbsence: evalDirectoryAbsence,
	TypeFileQuality:      evalFileQuality,
}

func evalFileAbsence(r *Rule, in evalInput) outcome {
	for _, c := range r.Check {
		for _, f := range in.inv.Files {
			if scanner.PathMatches(f, c) {
				return outcome{}
			}
		}
	}
	return outcome{issue: true}
}

func evalDirectoryAbsence(r *Rule, in evalInput) outcome {
	for _, c := range r.Check {
		if isConfigFile(c) {
			for _, f := range in.inv.Files {
				if scanner.PathMatches(f, c) {
					return outcome{}
				}
			}
			continue
		}
		prefix := strings.TrimSuffix(c, "/")
		for _, d := range in.inv.Directories {
			if strings.HasPrefix(d, prefix) {
				return outcome{}
			}
		}
	}
	return outcome{issue: true}
}

func isConfigFile(marker string) bool {
	ext := path.Ext(marker)
	for _, e := range configExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func evalFileQuality(r *Rule, in evalInput) outcome {
	var target string
	for _, c := range r.Check {
		if in.inv.HasFile(c) {
			target = c
			break
		}
	}
	if target == "" {
		return outcome{}
	}
	if in.fsys == nil {
		return outcome{warning: fmt.Sprintf("rule %s: no filesystem to read %s", r.ID, target)}
	}
	data, err := fs.ReadFile(in.fsys, target)
	if err != nil {
		return outcome{warning: fmt.Sprintf("rule %s: reading %s: %v", r.ID, target, err)}
	}

	content := string(data)
	var failed []string
	for _, c := range r.Criteria {
		if msg := c.Check(content); msg != "" {
			failed = append(failed, target+" "+msg)
		}
	}
	return outcome{issue: len(failed) > 0, details: failed}
}

// Engine evaluates a Document against inventories. It holds no per-run state
// and may be shared across goroutines.
type Engine struct {
	doc    *Document
	scorer *Scorer
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithScorer replaces the priority scorer. Document weight overrides are
// still applied on top of it.
func WithScorer(s *Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithLogger sets the logger used for evaluation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an Engine for doc.
func NewEngine(doc *Document, opts ...Option) *Engine {
	e := &Engine{doc: doc, scorer: NewScorer()}
	for _, opt := range opts {
		opt(e)
	}
	if len(doc.ConfidenceWeights) > 0 {
		e.scorer = e.scorer.WithConfidenceWeights(doc.ConfidenceWeights)
	}
	if e.logger == nil {
		e.logger = slog.Default().With("component", "rules")
	}
	return e
}

// Document returns the rule set the engine evaluates.
func (e *Engine) Document() *Document { return e.doc }

// Evaluate runs every rule in document order. fsys is rooted at the project
// and is only read by file_quality rules; it may be nil when none are loaded.
func (e *Engine) Evaluate(inv *scanner.Inventory, fsys fs.FS) Result {
	res := Result{
		ProjectName:     inv.ProjectName,
		ProjectTypes:    append([]string{}, inv.ProjectTypes...),
		Frameworks:      append([]string{}, inv.Frameworks...),
		Detections:      []Detection{},
		Recommendations: []Recommendation{},
		Skipped:         e.doc.Skipped,
		Summary:         Summary{TotalPatterns: len(e.doc.Rules)},
	}
	res.Warnings = append(res.Warnings, e.doc.Warnings...)

	in := evalInput{inv: inv, fsys: fsys}
	for i := range e.doc.Rules {
		r := &e.doc.Rules[i]
		if r.AppliesWhen != nil && !r.AppliesWhen.Match(inv) {
			continue
		}

		out := evaluators[r.Type](r, in)
		if out.warning != "" {
			e.logger.Warn("rule evaluation degraded", "rule", r.ID, "detail", out.warning)
			res.Warnings = append(res.Warnings, out.warning)
		}

		d := Detection{
			ID:         r.ID,
			Type:       r.Type,
			Confidence: r.Confidence,
			Severity:   r.Severity,
			IssueFound: out.issue,
			Details:    out.details,
		}
		if d.IssueFound {
			if rec := selectRecommendation(r.Recommendation, inv); rec != nil {
				d.Recommendation = rec
				res.Recommendations = append(res.Recommendations, Recommendation{
					ID:            r.ID,
					Template:      rec.Template,
					Reason:        rec.Reason,
					Severity:      r.Severity,
					Confidence:    r.Confidence,
					PriorityScore: e.scorer.Priority(r.Confidence, r.Severity),
				})
			}
			e.count(&res.Summary, d)
		}
		res.Detections = append(res.Detections, d)
	}

	res.Recommendations = Rank(res.Recommendations)
	return res
}

func (e *Engine) count(s *Summary, d Detection) {
	switch d.Severity {
	case LevelHigh:
		s.HighSeverity++
	case LevelMedium:
		s.MediumSeverity++
	case LevelLow:
		s.LowSeverity++
	default:
		e.logger.Warn("issue has unknown severity; not counted", "rule", d.ID, "severity", d.Severity)
		return
	}
	s.IssuesFound++
}

// selectRecommendation picks the first variant whose condition matches, or
// the base template. It returns nil when neither applies.
func selectRecommendation(spec *RecommendationSpec, inv *scanner.Inventory) *SelectedRecommendation {
	if spec == nil {
		return nil
	}
	for _, v := range spec.Variants {
		if v.Condition.Match(inv) {
			return &SelectedRecommendation{Template: v.Template, Reason: spec.Reason}
		}
	}
	if spec.Template == "" {
		return nil
	}
	return &SelectedRecommendation{Template: spec.Template, Reason: spec.Reason}
}
