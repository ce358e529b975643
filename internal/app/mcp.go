package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/mcp"
	"github.com/blackwell-systems/catalyst/internal/memory"
)

var (
	mcpFlagRules   string
	mcpFlagSession string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server",
	Long: `Start a Model Context Protocol stdio server that an assistant can
query during a session. The server exposes three tools:

  analyze_project  Health report, score and structured result for a path
  scan_project     Inventory of a path
  memory_params    Session-isolated store parameters for a path's analysis

Add to an MCP client configuration:
  {"mcpServers":{"catalyst":{"command":"catalyst","args":["mcp"]}}}`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpFlagRules, "rules", "", "Rule document to use instead of the built-in rules")
	mcpCmd.Flags().StringVar(&mcpFlagSession, "session", "", "Session id for memory_params (default: config or .claude/project-session-id)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadRules(rulesPath(mcpFlagRules, cfg))
	if err != nil {
		return err
	}

	opts := []mcp.Option{
		mcp.WithImportance(cfg.Memory.Importance),
		mcp.WithLogger(logger("mcp")),
	}
	// memory_params reports the missing session itself.
	id, err := resolveSession(mcpFlagSession, cfg)
	switch {
	case err == nil:
		opts = append(opts, mcp.WithSessionID(id))
	case errors.Is(err, memory.ErrNoSession):
		logger("mcp").Debug("no session id", "error", err)
	default:
		return fmt.Errorf("resolving session: %w", err)
	}

	srv := mcp.NewServer(doc, appVersion, opts...)
	return srv.Run(cmd.Context())
}
