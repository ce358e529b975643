package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/analysis"
	"github.com/blackwell-systems/catalyst/internal/config"
	"github.com/blackwell-systems/catalyst/internal/output"
)

var (
	analyzeFlagRules    string
	analyzeFlagRemember bool
	analyzeFlagTop      int
	analyzeFlagSession  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path...]",
	Short: "Scan projects, evaluate rules and print health reports",
	Long: `Analyze scans each project directory (default: the current directory),
evaluates the rule set against it and prints the health report. Several
paths are analyzed concurrently and reported in argument order.

With --remember each result is stored in the local memory database under
the current session.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlagRules, "rules", "", "Rule document to use instead of the built-in rules")
	analyzeCmd.Flags().BoolVar(&analyzeFlagRemember, "remember", false, "Store each result in the local memory database")
	analyzeCmd.Flags().IntVar(&analyzeFlagTop, "top", 0, "Number of priority actions to list (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeFlagSession, "session", "", "Session id for --remember (default: config or .claude/project-session-id)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadRules(rulesPath(analyzeFlagRules, cfg))
	if err != nil {
		return err
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	top := cfg.Output.TopActions
	if analyzeFlagTop > 0 {
		top = analyzeFlagTop
	}

	p := analysis.New(doc,
		analysis.WithRenderer(newRenderer(doc, top)),
		analysis.WithLogger(logger("analysis")),
	)
	results, err := p.RunAll(cmd.Context(), roots)
	if err != nil {
		return err
	}

	var stored []string
	if analyzeFlagRemember {
		if stored, err = rememberAll(cmd, cfg, results); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, results)
	}
	for i, a := range results {
		if i > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, output.StyleMuted.Render(fmt.Sprintf("%s %s", output.Symbols().Arrow, a.Inventory.ProjectPath)))
		}
		fmt.Fprintln(out, a.Report)
		if stored != nil {
			fmt.Fprintln(out, output.StyleMuted.Render("Stored as "+stored[i]))
		}
	}
	return nil
}

// rememberAll stores every result and returns the memory ids in order.
func rememberAll(cmd *cobra.Command, cfg *config.Config, results []*analysis.Analysis) ([]string, error) {
	client, err := newMemoryClient(analyzeFlagSession, cfg)
	if err != nil {
		return nil, err
	}
	db, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ids := make([]string, len(results))
	for i, a := range results {
		id, err := client.Remember(cmd.Context(), db, a.Result, a.Result.ProjectName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Inventory.ProjectPath, err)
		}
		ids[i] = id
	}
	return ids, nil
}
