package rules

import (
	"testing"

	"github.com/blackwell-systems/catalyst/internal/scanner"
)

func conditionInventory() *scanner.Inventory {
	return &scanner.Inventory{
		Files:        []string{"package.json", "src/setup.py", ".github/workflows/ci.yml"},
		Directories:  []string{".github", ".github/workflows", "src"},
		ProjectTypes: []string{"node", "python"},
		Frameworks:   []string{"react"},
		HasGit:       true,
	}
}

func TestCompileCondition(t *testing.T) {
	inv := conditionInventory()
	tests := []struct {
		expr  string
		want  bool
		known bool
	}{
		{"", true, true},
		{"always", true, true},
		{"has_git", true, true},
		{"has_ci", false, true},
		{"!has_ci", true, true},
		{"!has_git", false, true},
		{"exists(package.json)", true, true},
		{"exists(setup.py)", false, true}, // exact root-relative match only
		{"exists(src/setup.py)", true, true},
		{"any_of(pom.xml, package.json)", true, true},
		{"any_of(pom.xml, build.gradle)", false, true},
		{"all_of(package.json, src/setup.py)", true, true},
		{"all_of(package.json, pom.xml)", false, true},
		{"dir_exists(.github/workflows)", true, true},
		{"dir_exists(.github/workflows/)", true, true},
		{"dir_exists(.git)", false, true},
		{"project_type(go, python)", true, true},
		{"project_type(go)", false, true},
		{"framework(vue, react)", true, true},
		{"!framework(react)", false, true},
		{"package.json exists", true, true},
		{"requirements.txt or setup.py exists", false, true},
		{"requirements.txt or package.json exists", true, true},

		// Outside the grammar: fail open and report.
		{"the moon is full", true, false},
		{"exists()", true, false},
		{"exists(a, b)", true, false},
		{"sometimes(x)", true, false},
		{"!nonsense", true, false},
		{"a or  exists", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			c, ok := CompileCondition(tt.expr)
			if ok != tt.known {
				t.Fatalf("expected known=%v, got %v", tt.known, ok)
			}
			if got := c.Match(inv); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompileCondition_String(t *testing.T) {
	tests := map[string]string{
		"any_of( a ,b )":     "any_of(a, b)",
		"!has_tests":         "!has_tests",
		"a or b exists":      "any_of(a, b)",
		"project_type(node)": "project_type(node)",
		"dir_exists(docs/)":  "dir_exists(docs)",
		"mystery":            "mystery",
	}
	for expr, want := range tests {
		c, _ := CompileCondition(expr)
		if got := c.String(); got != want {
			t.Errorf("CompileCondition(%q).String() = %q, want %q", expr, got, want)
		}
	}
}
