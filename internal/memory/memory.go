// Package memory builds the session-isolated parameters used to persist and
// look up analysis results in an external memory service.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/catalyst/internal/health"
	"github.com/blackwell-systems/catalyst/internal/rules"
)

// Fixed parameter values.
const (
	Source            = "project-catalyst-analyzer"
	Domain            = "project-catalyst"
	SessionOnly       = "session_only"
	ConciseFormat     = "concise"
	DefaultImportance = 8
	DefaultLimit      = 10
)

var (
	// ErrIsolation means parameters would reach the memory service without
	// session isolation.
	ErrIsolation = errors.New("isolation violation")

	// ErrNoSession means no session id was configured or found.
	ErrNoSession = errors.New("no session id")
)

// Record is the content stored for one analysis.
type Record struct {
	Timestamp        time.Time              `json:"timestamp"`
	ProjectName      string                 `json:"project_name"`
	PatternsDetected int                    `json:"patterns_detected"`
	IssuesFound      int                    `json:"issues_found"`
	Recommendations  []rules.Recommendation `json:"recommendations"`
	ConfidenceScores map[string]rules.Level `json:"confidence_scores"`
	ProjectType      []string               `json:"project_type"`
	Frameworks       []string               `json:"frameworks"`
	HealthScore      int                    `json:"health_score"`
}

// NewRecord summarizes res for storage.
func NewRecord(res rules.Result, project string, now time.Time) Record {
	scores := make(map[string]rules.Level, len(res.Detections))
	for _, d := range res.Detections {
		scores[d.ID] = d.Confidence
	}
	recs := res.Recommendations
	if recs == nil {
		recs = []rules.Recommendation{}
	}
	return Record{
		Timestamp:        now,
		ProjectName:      project,
		PatternsDetected: len(res.Detections),
		IssuesFound:      res.Summary.IssuesFound,
		Recommendations:  recs,
		ConfidenceScores: scores,
		ProjectType:      nonNil(res.ProjectTypes),
		Frameworks:       nonNil(res.Frameworks),
		HealthScore:      health.Score(res.Summary),
	}
}

// DecodeRecord parses stored content back into a Record.
func DecodeRecord(content string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return Record{}, fmt.Errorf("decoding analysis record: %w", err)
	}
	return r, nil
}

// StoreParams are the arguments of a store call.
type StoreParams struct {
	Content           string   `json:"content"`
	Tags              []string `json:"tags"`
	Importance        int      `json:"importance"`
	Source            string   `json:"source"`
	Domain            string   `json:"domain"`
	SessionFilterMode string   `json:"session_filter_mode"`
	SessionID         string   `json:"session_id"`
}

// SearchParams are the arguments of a search call.
type SearchParams struct {
	Query             string   `json:"query"`
	Tags              []string `json:"tags"`
	SessionFilterMode string   `json:"session_filter_mode"`
	SessionID         string   `json:"session_id"`
	Limit             int      `json:"limit"`
	ResponseFormat    string   `json:"response_format"`
}

// Memory is one stored entry returned by a search.
type Memory struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Importance int       `json:"importance"`
	SessionID  string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Backend persists and searches memories.
type Backend interface {
	Store(ctx context.Context, p StoreParams) (string, error)
	Search(ctx context.Context, p SearchParams) ([]Memory, error)
}

// EnsureIsolation verifies the session filter of store parameters and the
// importance range.
func (p StoreParams) EnsureIsolation() error {
	if err := ensureIsolation(p.SessionFilterMode, p.SessionID); err != nil {
		return err
	}
	if p.Importance < 1 || p.Importance > 10 {
		return fmt.Errorf("importance must be between 1 and 10, got %d", p.Importance)
	}
	return nil
}

// EnsureIsolation verifies the session filter of search parameters.
func (p SearchParams) EnsureIsolation() error {
	return ensureIsolation(p.SessionFilterMode, p.SessionID)
}

func ensureIsolation(mode, sessionID string) error {
	if mode != SessionOnly {
		return fmt.Errorf("%w: session_filter_mode must be %q, got %q", ErrIsolation, SessionOnly, mode)
	}
	if sessionID == "" {
		return fmt.Errorf("%w: session_id is required", ErrIsolation)
	}
	return nil
}

// Client builds parameters for one session.
type Client struct {
	sessionID  string
	importance int
	now        func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithImportance overrides the stored importance.
func WithImportance(n int) ClientOption {
	return func(c *Client) { c.importance = n }
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient returns a Client for sessionID. An empty id is ErrNoSession.
func NewClient(sessionID string, opts ...ClientOption) (*Client, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	c := &Client{sessionID: sessionID, importance: DefaultImportance, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SessionID returns the session the client is bound to.
func (c *Client) SessionID() string { return c.sessionID }

// StoreParams builds isolated parameters storing res for project.
func (c *Client) StoreParams(res rules.Result, project string) (StoreParams, error) {
	content, err := json.MarshalIndent(NewRecord(res, project, c.now()), "", "  ")
	if err != nil {
		return StoreParams{}, fmt.Errorf("encoding analysis record: %w", err)
	}
	p := StoreParams{
		Content:           string(content),
		Tags:              []string{"project-analysis", "catalyst", "pattern-detection", project},
		Importance:        c.importance,
		Source:            Source,
		Domain:            Domain,
		SessionFilterMode: SessionOnly,
		SessionID:         c.sessionID,
	}
	if err := p.EnsureIsolation(); err != nil {
		return StoreParams{}, err
	}
	return p, nil
}

// SearchParams builds isolated parameters looking up earlier analyses of
// project.
func (c *Client) SearchParams(project string) (SearchParams, error) {
	p := SearchParams{
		Query:             "project-analysis " + project,
		Tags:              []string{"project-analysis", project},
		SessionFilterMode: SessionOnly,
		SessionID:         c.sessionID,
		Limit:             DefaultLimit,
		ResponseFormat:    ConciseFormat,
	}
	if err := p.EnsureIsolation(); err != nil {
		return SearchParams{}, err
	}
	return p, nil
}

// Remember stores res through b.
func (c *Client) Remember(ctx context.Context, b Backend, res rules.Result, project string) (string, error) {
	p, err := c.StoreParams(res, project)
	if err != nil {
		return "", err
	}
	id, err := b.Store(ctx, p)
	if err != nil {
		return "", fmt.Errorf("storing analysis: %w", err)
	}
	return id, nil
}

// History returns the stored records for project, newest first. Entries
// whose content is not a record are skipped.
func (c *Client) History(ctx context.Context, b Backend, project string) ([]Record, error) {
	p, err := c.SearchParams(project)
	if err != nil {
		return nil, err
	}
	found, err := b.Search(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("searching analyses: %w", err)
	}
	records := make([]Record, 0, len(found))
	for _, m := range found {
		r, err := DecodeRecord(m.Content)
		if err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
