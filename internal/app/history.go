package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/health"
	"github.com/blackwell-systems/catalyst/internal/memory"
	"github.com/blackwell-systems/catalyst/internal/output"
)

var historyFlagSession string

var historyCmd = &cobra.Command{
	Use:   "history <project>",
	Short: "Show stored analyses of a project",
	Long: `History lists the analyses of a project stored with 'analyze --remember'
or 'memory store --local' during the current session, newest first, with
the change in health score against the previous run.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFlagSession, "session", "", "Session id (default: config or .claude/project-session-id)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := newMemoryClient(historyFlagSession, cfg)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := client.History(cmd.Context(), db, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, records)
	}

	fmt.Fprintln(out, output.Section("History: "+args[0]))
	fmt.Fprintln(out)
	if len(records) == 0 {
		fmt.Fprintln(out, output.StyleMuted.Render(" No stored analyses in this session."))
		return nil
	}
	historyTable(records).Fprint(out)
	return nil
}

// historyTable renders records, newest first. The trend compares each run
// with the one before it.
func historyTable(records []memory.Record) *output.Table {
	tbl := output.NewTable("When", "Health", "Rating", "Trend", "Issues", "Types")
	for i, r := range records {
		trend := ""
		if i+1 < len(records) {
			trend = output.TrendArrow(r.HealthScore - records[i+1].HealthScore)
		}
		tbl.AddRow(
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			output.ScoreBar(r.HealthScore, 10),
			health.Rating(r.HealthScore),
			trend,
			fmt.Sprintf("%d/%d", r.IssuesFound, r.PatternsDetected),
			strings.Join(r.ProjectType, ", "),
		)
	}
	return tbl
}
