package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/catalyst/internal/output"
	"github.com/blackwell-systems/catalyst/internal/rules"
)

var rulesFlagRules string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the loaded rule set",
	Long: `Rules loads the rule document (built-in, --rules, or rules_file from the
config) and lists every accepted rule, followed by the rules that were
skipped and any condition warnings.`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFlagRules, "rules", "", "Rule document to list instead of the built-in rules")
	rootCmd.AddCommand(rulesCmd)
}

// ruleRow is the JSON form of one accepted rule.
type ruleRow struct {
	ID          string      `json:"id"`
	Type        rules.Type  `json:"type"`
	Check       []string    `json:"check"`
	AppliesWhen string      `json:"applies_when"`
	Confidence  rules.Level `json:"confidence"`
	Severity    rules.Level `json:"severity"`
}

// rulesOutput is the JSON form of the rules command.
type rulesOutput struct {
	Rules    []ruleRow           `json:"rules"`
	Skipped  []rules.SkippedRule `json:"skipped"`
	Warnings []string            `json:"warnings"`
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, err := loadRules(rulesPath(rulesFlagRules, cfg))
	if err != nil {
		return err
	}

	rows := make([]ruleRow, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		when := "always"
		if r.AppliesWhen != nil {
			when = r.AppliesWhen.String()
		}
		rows = append(rows, ruleRow{
			ID:          r.ID,
			Type:        r.Type,
			Check:       r.Check,
			AppliesWhen: when,
			Confidence:  r.Confidence,
			Severity:    r.Severity,
		})
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, rulesOutput{
			Rules:    rows,
			Skipped:  nonNilSkipped(doc.Skipped),
			Warnings: nonNilStrings(doc.Warnings),
		})
	}

	fmt.Fprintln(out, output.Section(fmt.Sprintf("Rules (%d)", len(rows))))
	fmt.Fprintln(out)
	tbl := output.NewTable("ID", "Type", "Severity", "Confidence", "Applies When")
	for _, r := range rows {
		tbl.AddRow(r.ID, string(r.Type), severityCell(r.Severity), string(r.Confidence), r.AppliesWhen)
	}
	tbl.Fprint(out)

	g := output.Symbols()
	if len(doc.Skipped) > 0 {
		fmt.Fprintln(out, output.Section("Skipped"))
		fmt.Fprintln(out)
		for _, s := range doc.Skipped {
			id := s.ID
			if id == "" {
				id = fmt.Sprintf("#%d", s.Index)
			}
			fmt.Fprintf(out, "  %s %s: %s\n", g.Error, output.StyleBold.Render(id), s.Reason)
		}
	}
	if len(doc.Warnings) > 0 {
		fmt.Fprintln(out, output.Section("Warnings"))
		fmt.Fprintln(out)
		for _, w := range doc.Warnings {
			fmt.Fprintf(out, "  %s %s\n", g.Warning, w)
		}
	}
	return nil
}

func severityCell(l rules.Level) string {
	switch l {
	case rules.LevelHigh:
		return output.StyleError.Render(string(l))
	case rules.LevelMedium:
		return output.StyleWarning.Render(string(l))
	}
	return output.StyleMuted.Render(string(l))
}

func nonNilSkipped(s []rules.SkippedRule) []rules.SkippedRule {
	if s == nil {
		return []rules.SkippedRule{}
	}
	return s
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
