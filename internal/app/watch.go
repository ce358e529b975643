package app

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/analysis"
	"github.com/blackwell-systems/catalyst/internal/output"
	"github.com/blackwell-systems/catalyst/internal/watcher"
)

var (
	watchFlagInterval time.Duration
	watchFlagRules    string
	watchFlagNotify   bool
	watchFlagQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-analyze a project and alert when its health changes",
	Long: `Watch analyzes the project directory (default: the current directory)
at a regular interval and prints an alert whenever the health rating or
score changes, a rule starts failing, or an issue is resolved.

Examples:
  catalyst watch                    # check every minute (ctrl-c to stop)
  catalyst watch --interval 10s     # check every 10 seconds
  catalyst watch --notify           # also send desktop notifications`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchFlagInterval, "interval", time.Minute, "Check interval (e.g. 30s, 5m)")
	watchCmd.Flags().StringVar(&watchFlagRules, "rules", "", "Rule document to use instead of the built-in rules")
	watchCmd.Flags().BoolVar(&watchFlagNotify, "notify", false, "Send desktop notifications for alerts")
	watchCmd.Flags().BoolVar(&watchFlagQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchFlagInterval < time.Second {
		return fmt.Errorf("interval must be at least 1s, got %s", watchFlagInterval)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadRules(rulesPath(watchFlagRules, cfg))
	if err != nil {
		return err
	}
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	alertFn := func(a watcher.Alert) {
		if watchFlagNotify {
			_ = watcher.Notify(a, cmd.ErrOrStderr())
		}
		if !watchFlagQuiet {
			printAlert(out, a)
		}
	}

	p := analysis.New(doc, analysis.WithLogger(logger("analysis")))
	w := watcher.New(root, watchFlagInterval, p, alertFn)

	initial, err := w.Baseline()
	if err != nil {
		return fmt.Errorf("initial analysis: %w", err)
	}
	if !watchFlagQuiet {
		fmt.Fprintf(out, "catalyst watching %s (checking every %s)\n", root, watchFlagInterval)
		fmt.Fprintf(out, " %s %s  %s, %d open issues\n",
			output.StyleLabel.Render("Baseline:"),
			output.ScoreBar(initial.HealthScore, 20),
			initial.Rating,
			len(initial.Issues))
	}

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// printAlert formats and prints an alert to the terminal.
func printAlert(w io.Writer, a watcher.Alert) {
	timestamp := a.Time.Format("15:04:05")
	fmt.Fprintf(w, "[%s] %s %s\n", timestamp, alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Fprintf(w, "           %s\n", a.Message)
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	g := output.Symbols()
	switch level {
	case "critical":
		return output.StyleError.Render(g.Error)
	case "warning":
		return output.StyleWarning.Render(g.Warning)
	case "info":
		return output.StyleSuccess.Render(g.OK)
	default:
		return " "
	}
}
