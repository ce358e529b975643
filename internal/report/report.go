// Package report renders rule engine results as a terminal report.
package report

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/blackwell-systems/catalyst/internal/health"
	"github.com/blackwell-systems/catalyst/internal/output"
	"github.com/blackwell-systems/catalyst/internal/rules"
)

// DefaultTopActions is how many recommendations the priority section lists.
const DefaultTopActions = 5

// ErrNoHealthLine is returned by ParseHealthScore when the report has no
// health line.
var ErrNoHealthLine = errors.New("report has no health line")

var defaultSeverityRanks = map[rules.Level]int{
	rules.LevelHigh:   3,
	rules.LevelMedium: 2,
	rules.LevelLow:    1,
}

// Renderer turns a rules.Result into text. A Renderer holds no per-report
// state and may be shared.
type Renderer struct {
	glyphs        output.Glyphs
	top           int
	categories    []Category
	descriptions  map[string]string
	severityRanks map[rules.Level]int
	color         bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithGlyphs selects the symbol set.
func WithGlyphs(g output.Glyphs) Option {
	return func(r *Renderer) { r.glyphs = g }
}

// WithTopActions sets how many priority actions are listed. Values below one
// keep the default.
func WithTopActions(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.top = n
		}
	}
}

// WithCategories replaces the category taxonomy.
func WithCategories(c []Category) Option {
	return func(r *Renderer) { r.categories = c }
}

// WithDescriptions replaces the id to description table.
func WithDescriptions(d map[string]string) Option {
	return func(r *Renderer) { r.descriptions = d }
}

// WithSeverityRanks sets how severities are ordered when picking a
// category's worst unresolved issue. Higher is worse.
func WithSeverityRanks(ranks map[rules.Level]int) Option {
	return func(r *Renderer) {
		if len(ranks) > 0 {
			r.severityRanks = ranks
		}
	}
}

// WithColor styles headings and the health line with the output package
// styles.
func WithColor(enabled bool) Option {
	return func(r *Renderer) { r.color = enabled }
}

// New returns a Renderer with the default tables.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		glyphs:        output.Unicode,
		top:           DefaultTopActions,
		categories:    DefaultCategories,
		descriptions:  DefaultDescriptions,
		severityRanks: defaultSeverityRanks,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render formats res. It never fails; empty results produce "nothing to
// do" messages.
func (r *Renderer) Render(res rules.Result) string {
	title := cases.Title(language.English)
	sections := []string{
		r.header(),
		r.identity(res, title),
		r.categoryStatus(res, title),
		r.priorityActions(res, title),
		r.healthLine(health.Score(res.Summary)),
	}
	return strings.Join(sections, "\n\n")
}

// Render formats res with the default Renderer.
func Render(res rules.Result) string {
	return New().Render(res)
}

func (r *Renderer) header() string {
	return r.style(output.StyleHeader, r.glyphs.Search+" Project Analysis Results")
}

func (r *Renderer) identity(res rules.Result, title cases.Caser) string {
	projectType := "Unknown"
	if len(res.ProjectTypes) > 0 {
		projectType = title.String(strings.Join(res.ProjectTypes, ", "))
	}

	lines := []string{
		"Project: " + res.ProjectName,
		"Type: " + projectType,
	}
	if len(res.Frameworks) > 0 {
		lines = append(lines, "Frameworks: "+title.String(strings.Join(res.Frameworks, ", ")))
	}
	lines = append(lines,
		fmt.Sprintf("Patterns Checked: %d", res.Summary.TotalPatterns),
		fmt.Sprintf("Issues Found: %d", res.Summary.IssuesFound),
	)
	return strings.Join(lines, "\n")
}

func (r *Renderer) categoryStatus(res rules.Result, title cases.Caser) string {
	if len(res.Detections) == 0 {
		return r.glyphs.OK + " No checks applied."
	}

	names := make([]string, 0, len(r.categories)+1)
	for _, c := range r.categories {
		names = append(names, c.Name)
	}
	names = append(names, OtherCategory)

	grouped := make(map[string][]rules.Detection)
	for _, d := range res.Detections {
		name := categoryOf(r.categories, d.ID)
		grouped[name] = append(grouped[name], d)
	}

	var lines []string
	for _, name := range names {
		detections := grouped[name]
		if len(detections) == 0 {
			continue
		}

		lines = append(lines, fmt.Sprintf("%s: %s", r.style(output.StyleBold, name), r.statusGlyph(detections)))
		for _, d := range detections {
			if d.IssueFound {
				lines = append(lines, "  "+r.issue(d, title))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// statusGlyph reflects the worst unresolved severity in detections.
func (r *Renderer) statusGlyph(detections []rules.Detection) string {
	worst, found := rules.Level(""), false
	for _, d := range detections {
		if !d.IssueFound {
			continue
		}
		if !found || r.severityRanks[d.Severity] > r.severityRanks[worst] {
			worst, found = d.Severity, true
		}
	}
	switch {
	case !found:
		return r.glyphs.OK
	case worst == rules.LevelHigh:
		return r.glyphs.Error
	default:
		return r.glyphs.Warning
	}
}

func (r *Renderer) issue(d rules.Detection, title cases.Caser) string {
	icon := r.glyphs.Info
	switch d.Severity {
	case rules.LevelHigh:
		icon = r.glyphs.Error
	case rules.LevelMedium:
		icon = r.glyphs.Warning
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (confidence: %s, severity: %s)", icon, r.describe(d.ID, title), d.Confidence, d.Severity)
	for _, detail := range d.Details {
		b.WriteString("\n     " + r.style(output.StyleMuted, detail))
	}
	if rec := d.Recommendation; rec != nil {
		b.WriteString("\n     " + r.applyLine(rec.Template))
		if rec.Reason != "" {
			b.WriteString("\n     Reason: " + rec.Reason)
		}
	}
	return b.String()
}

func (r *Renderer) priorityActions(res rules.Result, title cases.Caser) string {
	if len(res.Recommendations) == 0 {
		return r.glyphs.OK + " No priority actions needed!"
	}

	top := res.Recommendations
	if len(top) > r.top {
		top = top[:r.top]
	}

	lines := []string{r.style(output.StyleHeader, "Priority Actions:")}
	for i, rec := range top {
		lines = append(lines,
			fmt.Sprintf("  %d. %s (%s severity)", i+1, r.describe(rec.ID, title), rec.Severity),
			"     "+r.applyLine(rec.Template),
		)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) applyLine(template string) string {
	return r.style(output.StyleMuted, r.glyphs.Arrow+" /apply-template "+template)
}

func (r *Renderer) healthLine(score int) string {
	rating := health.Rating(score)
	var icon string
	switch rating {
	case health.Excellent:
		icon = r.glyphs.Rocket
	case health.Good:
		icon = r.glyphs.OK
	case health.Fair:
		icon = r.glyphs.Warning
	default:
		icon = r.glyphs.Error
	}
	line := fmt.Sprintf("%s Project Health: %d/100 (%s)", icon, score, rating)
	return r.style(output.ForScore(score), line)
}

// describe looks up the description for id, falling back to the id with
// dashes replaced and title-cased.
func (r *Renderer) describe(id string, title cases.Caser) string {
	if d, ok := r.descriptions[id]; ok {
		return d
	}
	return title.String(strings.ReplaceAll(id, "-", " "))
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

var healthLineRe = regexp.MustCompile(`Project Health: (\d+)/100`)

// ParseHealthScore recovers the score from a rendered report. Styling
// escape sequences are ignored.
func ParseHealthScore(report string) (int, error) {
	m := healthLineRe.FindStringSubmatch(ansi.Strip(report))
	if m == nil {
		return 0, ErrNoHealthLine
	}
	return strconv.Atoi(m[1])
}
