package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/memory"
	"github.com/blackwell-systems/catalyst/internal/rules"
)

var (
	memoryFlagSession string
	memoryFlagLocal   bool
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Build session-isolated memory parameters",
	Long: `Memory builds the parameters a memory service needs to store or look up
analysis results. Every parameter set is bound to one session: the id comes
from --session, the session_id config key, or the nearest
.claude/project-session-id file.

With --local the parameters are executed against the local SQLite memory
database instead of printed.`,
}

var memoryStoreCmd = &cobra.Command{
	Use:   "store <result.json|->",
	Short: "Build store parameters for a saved result",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoryStore,
}

var memoryRetrieveCmd = &cobra.Command{
	Use:   "retrieve <project>",
	Short: "Build search parameters for a project's earlier analyses",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoryRetrieve,
}

func init() {
	memoryCmd.PersistentFlags().StringVar(&memoryFlagSession, "session", "", "Session id (default: config or .claude/project-session-id)")
	memoryCmd.PersistentFlags().BoolVar(&memoryFlagLocal, "local", false, "Execute against the local memory database")

	memoryCmd.AddCommand(memoryStoreCmd)
	memoryCmd.AddCommand(memoryRetrieveCmd)
	rootCmd.AddCommand(memoryCmd)
}

// storedOutput reports where a result was stored.
type storedOutput struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
}

func runMemoryStore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := newMemoryClient(memoryFlagSession, cfg)
	if err != nil {
		return err
	}

	var res rules.Result
	if err := decodeInput(cmd, args[0], &res); err != nil {
		return err
	}
	if res.ProjectName == "" {
		return fmt.Errorf("%s: result has no project_name", args[0])
	}

	if !memoryFlagLocal {
		p, err := client.StoreParams(res, res.ProjectName)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), p)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := client.Remember(cmd.Context(), db, res, res.ProjectName)
	if err != nil {
		return err
	}
	logger("memory").Debug("stored analysis", "project", res.ProjectName, "id", id)
	return writeJSON(cmd.OutOrStdout(), storedOutput{ID: id, SessionID: client.SessionID()})
}

func runMemoryRetrieve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := newMemoryClient(memoryFlagSession, cfg)
	if err != nil {
		return err
	}

	p, err := client.SearchParams(args[0])
	if err != nil {
		return err
	}
	if !memoryFlagLocal {
		return writeJSON(cmd.OutOrStdout(), p)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	found, err := db.Search(cmd.Context(), p)
	if err != nil {
		return err
	}
	if found == nil {
		found = []memory.Memory{}
	}
	return writeJSON(cmd.OutOrStdout(), found)
}
