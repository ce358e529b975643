package report

import "strings"

// Category groups detections whose id contains any of Keywords.
type Category struct {
	Name     string
	Keywords []string
}

// OtherCategory collects detections that match no category.
const OtherCategory = "Other"

// DefaultCategories is the category taxonomy, matched in order.
var DefaultCategories = []Category{
	{Name: "Git Configuration", Keywords: []string{"gitignore", "git-"}},
	{Name: "Documentation", Keywords: []string{"readme", "contributing", "license"}},
	{Name: "CI/CD", Keywords: []string{"ci", "workflow", "docker"}},
	{Name: "Code Quality", Keywords: []string{"eslint", "prettier"}},
	{Name: "Setup", Keywords: []string{"editorconfig"}},
}

// DefaultDescriptions maps rule ids to the text shown in reports.
var DefaultDescriptions = map[string]string{
	"missing-gitignore":        "Missing .gitignore",
	"gitignore-incomplete":     ".gitignore is incomplete",
	"missing-ci-workflow":      "No CI/CD configuration",
	"missing-git-hooks":        "Missing Git hooks",
	"missing-readme":           "Missing README.md",
	"readme-minimal":           "README.md is minimal",
	"missing-contributing":     "Missing CONTRIBUTING.md",
	"missing-license":          "Missing LICENSE",
	"missing-build-workflow":   "Missing build workflow",
	"missing-release-workflow": "Missing release workflow",
	"missing-dockerfile":       "Missing Dockerfile",
	"missing-eslint":           "Missing ESLint configuration",
	"missing-prettier":         "Missing Prettier configuration",
	"missing-editorconfig":     "Missing .editorconfig",
}

// categoryOf returns the first category whose keyword occurs in id.
func categoryOf(categories []Category, id string) string {
	for _, c := range categories {
		for _, kw := range c.Keywords {
			if strings.Contains(id, kw) {
				return c.Name
			}
		}
	}
	return OtherCategory
}
