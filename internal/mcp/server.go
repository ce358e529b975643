// Package mcp exposes the analysis pipeline as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/blackwell-systems/catalyst/internal/analysis"
	"github.com/blackwell-systems/catalyst/internal/memory"
	"github.com/blackwell-systems/catalyst/internal/rules"
	"github.com/blackwell-systems/catalyst/internal/scanner"
)

// Server wraps the MCP SDK server around one analysis pipeline.
type Server struct {
	MCPServer *sdkmcp.Server

	pipeline   *analysis.Pipeline
	scanner    *scanner.Scanner
	sessionID  string
	importance int
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithSessionID sets the session used by memory_params. Without one the
// tool reports memory.ErrNoSession.
func WithSessionID(id string) Option {
	return func(s *Server) { s.sessionID = id }
}

// WithImportance overrides the importance of built memory records.
func WithImportance(n int) Option {
	return func(s *Server) { s.importance = n }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates an MCP server evaluating doc.
func NewServer(doc *rules.Document, version string, opts ...Option) *Server {
	s := &Server{importance: memory.DefaultImportance}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "mcp")
	}
	s.scanner = scanner.New()
	s.scanner.Logger = s.logger
	s.pipeline = analysis.New(doc, analysis.WithScanner(s.scanner), analysis.WithLogger(s.logger))

	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "catalyst", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves requests on stdin/stdout until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_project",
		Description: "Scan a project directory, evaluate the rule set and return the health report with the structured result.",
	}, s.handleAnalyzeProject)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "scan_project",
		Description: "Inventory a project directory: files, directories, ecosystems, frameworks and git/CI/test markers.",
	}, s.handleScanProject)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "memory_params",
		Description: "Analyze a project and return session-isolated parameters for storing the result in a memory service.",
	}, s.handleMemoryParams)
}

// --- Tool input/output types ---

type pathInput struct {
	Path string `json:"path" jsonschema:"project directory to analyze"`
}

type analyzeProjectOutput struct {
	Report      string       `json:"report"`
	HealthScore int          `json:"health_score"`
	Rating      string       `json:"rating"`
	Result      rules.Result `json:"result"`
}

type scanProjectOutput struct {
	Inventory *scanner.Inventory `json:"inventory"`
}

// --- Handlers ---

func (s *Server) handleAnalyzeProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in pathInput) (*sdkmcp.CallToolResult, analyzeProjectOutput, error) {
	a, err := s.analyze(in.Path)
	if err != nil {
		return nil, analyzeProjectOutput{}, err
	}
	return nil, analyzeProjectOutput{
		Report:      a.Report,
		HealthScore: a.HealthScore,
		Rating:      a.Rating,
		Result:      a.Result,
	}, nil
}

func (s *Server) handleScanProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in pathInput) (*sdkmcp.CallToolResult, scanProjectOutput, error) {
	if in.Path == "" {
		return nil, scanProjectOutput{}, fmt.Errorf("path is required")
	}
	inv, err := s.scanner.Scan(in.Path)
	if err != nil {
		return nil, scanProjectOutput{}, fmt.Errorf("scanning: %w", err)
	}
	return nil, scanProjectOutput{Inventory: inv}, nil
}

func (s *Server) handleMemoryParams(ctx context.Context, _ *sdkmcp.CallToolRequest, in pathInput) (*sdkmcp.CallToolResult, memory.StoreParams, error) {
	client, err := memory.NewClient(s.sessionID, memory.WithImportance(s.importance))
	if err != nil {
		return nil, memory.StoreParams{}, err
	}
	a, err := s.analyze(in.Path)
	if err != nil {
		return nil, memory.StoreParams{}, err
	}
	p, err := client.StoreParams(a.Result, a.Result.ProjectName)
	if err != nil {
		return nil, memory.StoreParams{}, err
	}
	return nil, p, nil
}

func (s *Server) analyze(path string) (*analysis.Analysis, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	a, err := s.pipeline.Run(path)
	if err != nil {
		return nil, err
	}
	for _, w := range a.Warnings() {
		s.logger.Warn("analysis warning", "project", a.Inventory.ProjectName, "warning", w)
	}
	return a, nil
}
