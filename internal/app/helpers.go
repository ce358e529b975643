package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/config"
	"github.com/blackwell-systems/catalyst/internal/memory"
	"github.com/blackwell-systems/catalyst/internal/output"
	"github.com/blackwell-systems/catalyst/internal/report"
	"github.com/blackwell-systems/catalyst/internal/rules"
	"github.com/blackwell-systems/catalyst/internal/store"
)

// loadRules returns the rule document at path, or the built-in rules when
// path is empty. Skipped rules and condition warnings are logged.
func loadRules(path string) (*rules.Document, error) {
	l := rules.NewLoader()
	l.Logger = logger("rules")

	var (
		doc *rules.Document
		err error
	)
	if path == "" {
		doc, err = l.Default()
	} else {
		doc, err = l.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	for _, w := range doc.Warnings {
		l.Logger.Warn("rule warning", "warning", w)
	}
	return doc, nil
}

// rulesPath picks the --rules flag over the configured rules file.
func rulesPath(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.RulesFile
}

// newRenderer builds a report renderer from the output settings.
func newRenderer(doc *rules.Document, top int) *report.Renderer {
	return report.New(
		report.WithGlyphs(output.Symbols()),
		report.WithTopActions(top),
		report.WithSeverityRanks(doc.SeverityRanks),
		report.WithColor(!output.IsNoColor()),
	)
}

// readInput reads the named file, or stdin when name is "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// decodeInput decodes JSON from the named file or stdin into v.
func decodeInput(cmd *cobra.Command, name string, v any) error {
	data, err := readInput(cmd, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resolveSession returns the session id from the flag, the configuration or
// the nearest .claude/project-session-id, in that order.
func resolveSession(flag string, cfg *config.Config) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg.SessionID != "" {
		return cfg.SessionID, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return memory.FindSessionID(wd)
}

// newMemoryClient resolves the session and returns a client using the
// configured importance.
func newMemoryClient(flag string, cfg *config.Config) (*memory.Client, error) {
	id, err := resolveSession(flag, cfg)
	if err != nil {
		return nil, err
	}
	return memory.NewClient(id, memory.WithImportance(cfg.Memory.Importance))
}

// openStore opens the local memory database.
func openStore(cfg *config.Config) (*store.DB, error) {
	db, err := store.Open(cfg.Memory.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening memory database: %w", err)
	}
	return db, nil
}
