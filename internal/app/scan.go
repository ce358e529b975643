package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Print the inventory of a project tree",
	Long: `Scan walks the project directory (default: the current directory) and
prints its inventory as JSON: files, directories, ecosystems, frameworks and
the git/CI/test markers. The output can be fed to 'catalyst detect'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	s := scanner.New()
	s.Logger = logger("scanner")
	inv, err := s.Scan(root)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), inv)
}
