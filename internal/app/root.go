// Package app contains the Cobra command tree for catalyst.
package app

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/config"
	"github.com/blackwell-systems/catalyst/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagASCII   bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "catalyst",
	Short: "Project health analysis from repository structure",
	Long: `catalyst inspects a project tree, evaluates a configurable set of
structural rules (missing README, CI, license, ignore files, ...), ranks the
resulting recommendations and renders a health report scored from 0-100.

Run 'catalyst analyze' in a project directory for a full report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging(cmd.ErrOrStderr(), flagVerbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "catalyst", appVersion)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Use a subcommand:")
		fmt.Fprintln(out, "  analyze   Scan projects, evaluate rules and print health reports")
		fmt.Fprintln(out, "  scan      Print the inventory of a project tree")
		fmt.Fprintln(out, "  detect    Evaluate rules against a saved inventory")
		fmt.Fprintln(out, "  report    Render a saved result as a report")
		fmt.Fprintln(out, "  memory    Build session-isolated memory parameters")
		fmt.Fprintln(out, "  history   Show stored analyses of a project")
		fmt.Fprintln(out, "  rules     List the loaded rule set")
		fmt.Fprintln(out, "  doctor    Check the catalyst setup")
		fmt.Fprintln(out, "  mcp       Run the MCP stdio server")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/catalyst/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagASCII, "ascii", false, "Use ASCII symbols instead of emoji")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

// loadConfig reads the configuration and applies its output settings
// together with the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	output.SetNoColor(flagNoColor || !cfg.Output.Color || !isTerminal(cmd.OutOrStdout()))
	output.SetASCII(flagASCII || cfg.Output.ASCII)
	return cfg, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
