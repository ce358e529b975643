package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/health"
	"github.com/blackwell-systems/catalyst/internal/rules"
)

var (
	reportFlagRules string
	reportFlagTop   int
)

var reportCmd = &cobra.Command{
	Use:   "report <result.json|->",
	Short: "Render a saved result as a report",
	Long: `Report reads a rule evaluation result produced by 'catalyst detect'
(from a file, or stdin with "-") and prints the health report.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFlagRules, "rules", "", "Rule document whose severity table orders categories")
	reportCmd.Flags().IntVar(&reportFlagTop, "top", 0, "Number of priority actions to list (default from config)")
	rootCmd.AddCommand(reportCmd)
}

// reportOutput is the JSON form of a rendered report.
type reportOutput struct {
	Report      string `json:"report"`
	HealthScore int    `json:"health_score"`
	Rating      string `json:"rating"`
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadRules(rulesPath(reportFlagRules, cfg))
	if err != nil {
		return err
	}

	var res rules.Result
	if err := decodeInput(cmd, args[0], &res); err != nil {
		return err
	}

	top := cfg.Output.TopActions
	if reportFlagTop > 0 {
		top = reportFlagTop
	}
	text := newRenderer(doc, top).Render(res)

	if flagJSON {
		score := health.Score(res.Summary)
		return writeJSON(cmd.OutOrStdout(), reportOutput{
			Report:      text,
			HealthScore: score,
			Rating:      health.Rating(score),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
