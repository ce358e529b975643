package rules

import (
	"fmt"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"gopkg.in/yaml.v3"
)

// Criterion is one content check of a file_quality rule.
type Criterion interface {
	// Check returns a short description of the failure, or "" if content
	// satisfies the criterion.
	Check(content string) string
}

// CriterionFactory builds a Criterion from the YAML value under its key.
type CriterionFactory func(value *yaml.Node) (Criterion, error)

// DefaultCriteria returns the built-in criteria keyed by name.
func DefaultCriteria() map[string]CriterionFactory {
	return map[string]CriterionFactory{
		"min_lines":         newMinLines,
		"required_sections": newRequiredSections,
		"ignores":           newIgnores,
	}
}

type minLines int

func newMinLines(value *yaml.Node) (Criterion, error) {
	var n int
	if err := value.Decode(&n); err != nil {
		return nil, fmt.Errorf("min_lines: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("min_lines: must not be negative, got %d", n)
	}
	return minLines(n), nil
}

func (m minLines) Check(content string) string {
	if got := countLines(content); got < int(m) {
		return fmt.Sprintf("has %d lines, want at least %d", got, int(m))
	}
	return ""
}

// countLines counts lines the way a text editor shows them: a trailing
// newline does not start a new line.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

type requiredSections []string

func newRequiredSections(value *yaml.Node) (Criterion, error) {
	var sections []string
	if err := value.Decode(&sections); err != nil {
		return nil, fmt.Errorf("required_sections: %w", err)
	}
	return requiredSections(sections), nil
}

func (r requiredSections) Check(content string) string {
	var missing []string
	for _, s := range r {
		if !strings.Contains(content, s) {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return "missing sections: " + strings.Join(missing, ", ")
	}
	return ""
}

// ignoresPaths requires every listed path to be matched by the file when it
// is read as a gitignore.
type ignoresPaths []string

func newIgnores(value *yaml.Node) (Criterion, error) {
	var paths []string
	if err := value.Decode(&paths); err != nil {
		return nil, fmt.Errorf("ignores: %w", err)
	}
	return ignoresPaths(paths), nil
}

func (p ignoresPaths) Check(content string) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	gi := ignore.CompileIgnoreLines(lines...)
	var missing []string
	for _, path := range p {
		// Directory patterns such as "node_modules/" only match the slashed form.
		bare := strings.TrimSuffix(path, "/")
		if !gi.MatchesPath(bare) && !gi.MatchesPath(bare+"/") {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return "does not ignore: " + strings.Join(missing, ", ")
	}
	return ""
}
