// Package analysis runs the scan, rule evaluation and report stages for a
// project root.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/catalyst/internal/health"
	"github.com/blackwell-systems/catalyst/internal/report"
	"github.com/blackwell-systems/catalyst/internal/rules"
	"github.com/blackwell-systems/catalyst/internal/scanner"
)

// Analysis is the complete outcome of one run.
type Analysis struct {
	Inventory   *scanner.Inventory `json:"inventory"`
	Result      rules.Result       `json:"result"`
	HealthScore int                `json:"health_score"`
	Rating      string             `json:"rating"`
	Report      string             `json:"report"`
}

// Warnings returns every recoverable problem of the run: manifest read
// failures first, then rule warnings.
func (a *Analysis) Warnings() []string {
	var out []string
	out = append(out, a.Inventory.Warnings...)
	out = append(out, a.Result.Warnings...)
	return out
}

// Pipeline holds the stages. It keeps no per-run state, so one Pipeline can
// analyze several roots at once.
type Pipeline struct {
	scanner  *scanner.Scanner
	engine   *rules.Engine
	renderer *report.Renderer
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithScanner replaces the default scanner.
func WithScanner(s *scanner.Scanner) Option {
	return func(p *Pipeline) { p.scanner = s }
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *report.Renderer) Option {
	return func(p *Pipeline) { p.renderer = r }
}

// WithLogger sets the logger handed to every stage.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New returns a Pipeline evaluating doc.
func New(doc *rules.Document, opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.scanner == nil {
		p.scanner = scanner.New()
		p.scanner.Logger = p.logger.With("component", "scanner")
	}
	if p.renderer == nil {
		p.renderer = report.New(report.WithSeverityRanks(doc.SeverityRanks))
	}
	p.engine = rules.NewEngine(doc, rules.WithLogger(p.logger.With("component", "rules")))
	return p
}

// Run analyzes root with the given rule set and default stages.
func Run(root string, doc *rules.Document) (*Analysis, error) {
	return New(doc).Run(root)
}

// Run analyzes root. It returns either a complete Analysis or the first
// fatal error.
func (p *Pipeline) Run(root string) (*Analysis, error) {
	inv, err := p.scanner.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}
	res := p.engine.Evaluate(inv, os.DirFS(inv.ProjectPath))
	score := health.Score(res.Summary)

	p.logger.Debug("analysis complete",
		"project", inv.ProjectName,
		"files", inv.FileCount,
		"issues", res.Summary.IssuesFound,
		"health", score,
	)

	return &Analysis{
		Inventory:   inv,
		Result:      res,
		HealthScore: score,
		Rating:      health.Rating(score),
		Report:      p.renderer.Render(res),
	}, nil
}

// RunAll analyzes each root concurrently. Results are returned in the order
// of roots; the first failure cancels the remaining runs.
func (p *Pipeline) RunAll(ctx context.Context, roots []string) ([]*Analysis, error) {
	results := make([]*Analysis, len(roots))
	g, ctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := p.Run(root)
			if err != nil {
				return fmt.Errorf("%s: %w", root, err)
			}
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
