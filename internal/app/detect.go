package app

import (
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/rules"
	"github.com/blackwell-systems/catalyst/internal/scanner"
)

var detectFlagRules string

var detectCmd = &cobra.Command{
	Use:   "detect <inventory.json|->",
	Short: "Evaluate rules against a saved inventory",
	Long: `Detect reads an inventory produced by 'catalyst scan' (from a file, or
stdin with "-") and prints the rule evaluation result as JSON. Content
checks read files from the inventory's project path when it still exists.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectFlagRules, "rules", "", "Rule document to use instead of the built-in rules")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadRules(rulesPath(detectFlagRules, cfg))
	if err != nil {
		return err
	}

	var inv scanner.Inventory
	if err := decodeInput(cmd, args[0], &inv); err != nil {
		return err
	}

	engine := rules.NewEngine(doc, rules.WithLogger(logger("rules")))
	res := engine.Evaluate(&inv, projectFS(inv.ProjectPath))
	return writeJSON(cmd.OutOrStdout(), res)
}

// projectFS returns the project tree for content checks, or nil when the
// path is gone.
func projectFS(path string) fs.FS {
	if path == "" {
		return nil
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return nil
	}
	return os.DirFS(path)
}
