package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/config"
	"github.com/blackwell-systems/catalyst/internal/output"
	"github.com/blackwell-systems/catalyst/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the catalyst setup is healthy",
	Long: `Run a series of checks against the catalyst configuration, rule set,
session binding and local memory database. Prints a pass/fail line for
each check and a summary of how many checks passed.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	checks := []doctorCheck{
		checkConfigFile(flagConfig),
		checkRuleSet(cfg.RulesFile),
		checkSession(cfg),
		checkMemoryDatabase(cfg.Memory.DBPath),
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	fmt.Fprintln(out, output.Section("Doctor"))
	fmt.Fprintln(out)
	for _, c := range checks {
		renderDoctorCheck(out, c)
	}

	fmt.Fprintln(out)
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Fprintf(out, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Fprintf(out, " %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(w io.Writer, c doctorCheck) {
	g := output.Symbols()
	indicator := output.StyleSuccess.Render(g.OK)
	if !c.Passed {
		indicator = output.StyleWarning.Render(g.Error)
	}
	label := output.StyleLabel.Render(output.StyleBold.Render(c.Name))
	detail := output.StyleMuted.Render(c.Message)
	fmt.Fprintf(w, "  %s  %s %s\n", indicator, label, detail)
}

// checkConfigFile reports which config file is in effect. A missing default
// file passes; a missing explicit one does not.
func checkConfigFile(explicit string) doctorCheck {
	path := explicit
	if path == "" {
		path = config.ConfigFile()
	}
	if _, err := os.Stat(path); err != nil {
		if explicit == "" {
			return doctorCheck{Name: "Config file", Passed: true, Message: "not found, using defaults"}
		}
		return doctorCheck{Name: "Config file", Passed: false, Message: fmt.Sprintf("not found: %s", path)}
	}
	return doctorCheck{Name: "Config file", Passed: true, Message: path}
}

// checkRuleSet loads the configured rules and fails when any rule was
// skipped or a condition is not recognized.
func checkRuleSet(path string) doctorCheck {
	name := "Rule set"
	doc, err := loadRules(path)
	if err != nil {
		return doctorCheck{Name: name, Passed: false, Message: err.Error()}
	}
	source := "built-in"
	if path != "" {
		source = path
	}
	return doctorCheck{
		Name:    name,
		Passed:  len(doc.Skipped) == 0 && len(doc.Warnings) == 0,
		Message: fmt.Sprintf("%s: %d rules, %d skipped, %d warnings", source, len(doc.Rules), len(doc.Skipped), len(doc.Warnings)),
	}
}

// checkSession verifies that a session id can be resolved.
func checkSession(cfg *config.Config) doctorCheck {
	id, err := resolveSession("", cfg)
	if err != nil {
		return doctorCheck{Name: "Session id", Passed: false, Message: err.Error()}
	}
	return doctorCheck{Name: "Session id", Passed: true, Message: id}
}

// checkMemoryDatabase opens the memory database when it exists and reports
// its schema version. It never creates the file.
func checkMemoryDatabase(path string) doctorCheck {
	name := "Memory database"
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("not created yet: %s", path)}
		}
		return doctorCheck{Name: name, Passed: false, Message: err.Error()}
	}
	db, err := store.Open(path)
	if err != nil {
		return doctorCheck{Name: name, Passed: false, Message: err.Error()}
	}
	defer db.Close()
	v, err := db.SchemaVersion()
	if err != nil {
		return doctorCheck{Name: name, Passed: false, Message: err.Error()}
	}
	return doctorCheck{Name: name, Passed: true, Message: fmt.Sprintf("%s (schema v%d)", path, v)}
}
