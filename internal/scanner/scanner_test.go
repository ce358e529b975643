package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// writeTree creates the given files (relative path -> content) under root.
// Paths ending in "/" create empty directories.
func writeTree(t *testing.T, root string, tree map[string]string) {
	t.Helper()
	for rel, content := range tree {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestScan_PathNotFound(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
}

func TestScan_NotADirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Scan(file)
	if !errors.Is(err, ErrNotADirectory) {
		t.Fatalf("expected ErrNotADirectory, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Inventory
// ---------------------------------------------------------------------------

func TestScan_EmptyProject(t *testing.T) {
	root := t.TempDir()

	inv, err := Scan(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(root), inv.ProjectName)
	assert.Empty(t, inv.Files)
	assert.Empty(t, inv.Directories)
	assert.Equal(t, 0, inv.FileCount)
	assert.Equal(t, 0, inv.DirectoryCount)
	assert.Empty(t, inv.ProjectTypes)
	assert.Empty(t, inv.Frameworks)
	assert.False(t, inv.HasGit)
	assert.False(t, inv.HasCI)
	assert.False(t, inv.HasTests)
}

func TestScan_TraversalOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.txt":        "",
		"a.txt":        "",
		"src/main.go":  "",
		"src/pkg/x.go": "",
		"docs/":        "",
	})

	inv, err := Scan(root)
	require.NoError(t, err)

	wantDirs := []string{"docs", "src", "src/pkg"}
	wantFiles := []string{"a.txt", "b.txt", "src/main.go", "src/pkg/x.go"}
	if diff := cmp.Diff(wantDirs, inv.Directories); diff != "" {
		t.Errorf("directories mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantFiles, inv.Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_SkipsExcludedSubtrees(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"node_modules/react/package.json": "{}",
		"node_modules/react/src/index.js": "",
		"build-output/app.js":             "",
		".venv-3.12/lib/site.py":          "",
		"dist/tests/readme.md":            "",
		".git/HEAD":                       "ref",
		"src/app.pyc":                     "",
		"src/Main.class":                  "",
		"src/app.py":                      "",
		".github/workflows/ci.yml":        "",
		".gitignore":                      "node_modules/",
	})

	inv, err := Scan(root)
	require.NoError(t, err)

	assert.Equal(t, len(inv.Files), inv.FileCount)
	assert.Equal(t, len(inv.Directories), inv.DirectoryCount)

	for _, p := range append(append([]string{}, inv.Files...), inv.Directories...) {
		for _, seg := range strings.Split(p, "/") {
			if DefaultSkipPolicy.Skip(seg) {
				t.Errorf("path %q contains excluded segment %q", p, seg)
			}
		}
	}

	assert.ElementsMatch(t, []string{".github", ".github/workflows", "src"}, inv.Directories)
	assert.ElementsMatch(t, []string{".gitignore", ".github/workflows/ci.yml", "src/app.py"}, inv.Files)

	// The only test-like directory lives under dist/, which is never entered.
	assert.False(t, inv.HasTests)
	assert.True(t, inv.HasGit)
	assert.True(t, inv.HasCI)
}

// ---------------------------------------------------------------------------
// Ecosystems
// ---------------------------------------------------------------------------

func TestScan_PackageJSONOnly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json": `{"name": "demo", "dependencies": {"lodash": "^4.0.0"}}`,
	})

	inv, err := Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"node"}, inv.ProjectTypes)
	assert.Empty(t, inv.Frameworks)
	assert.Empty(t, inv.Warnings)
}

func TestScan_Polyglot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":                  "module x",
		"tools/requirements.txt":  "requests",
		"web/App.csproj":          "",
		"services/api/Cargo.toml": "",
	})

	inv, err := Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"python", "rust", "go", "csharp"}, inv.ProjectTypes)
}

func TestScan_ExactIndicatorNeedsSegmentBoundary(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"mysetup.py": "",
	})

	inv, err := Scan(root)
	require.NoError(t, err)
	assert.Empty(t, inv.ProjectTypes)
}

// ---------------------------------------------------------------------------
// Frameworks
// ---------------------------------------------------------------------------

func TestScan_ReactAndExpress(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json": `{
			"dependencies": {"react": "^18.0.0", "express": "^4.18.0"},
			"devDependencies": {"@types/node": "^20.0.0"}
		}`,
	})

	inv, err := Scan(root)
	require.NoError(t, err)

	assert.Subset(t, inv.Frameworks, []string{"react", "express"})
	assert.Equal(t, []string{"react", "express"}, inv.Frameworks)
}

func TestScan_DevDependenciesCount(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json": `{"devDependencies": {"@vue/test-utils": "2.0.0", "@angular/core": "17.0.0"}}`,
	})

	inv, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"vue", "angular"}, inv.Frameworks)
}

func TestScan_RequirementsText(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"requirements.txt": "Django==5.0\nFlask>=3\n",
	})

	inv, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"python"}, inv.ProjectTypes)
	assert.Equal(t, []string{"django", "flask"}, inv.Frameworks)
}

func TestScan_MalformedManifestIsRecoverable(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json":     `{"dependencies": {"react": `,
		"requirements.txt": "flask\n",
	})

	inv, err := Scan(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"node", "python"}, inv.ProjectTypes)
	assert.Equal(t, []string{"flask"}, inv.Frameworks)
	require.Len(t, inv.Warnings, 1)
	assert.Contains(t, inv.Warnings[0], "package.json")
}

func TestScan_NestedManifestNotRead(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"web/package.json": `{"dependencies": {"react": "18"}}`,
	})

	inv, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"node"}, inv.ProjectTypes)
	assert.Empty(t, inv.Frameworks)
}

// ---------------------------------------------------------------------------
// Flags
// ---------------------------------------------------------------------------

func TestScan_Flags(t *testing.T) {
	tests := []struct {
		name      string
		tree      map[string]string
		wantCI    bool
		wantTests bool
	}{
		{"empty", map[string]string{"main.go": ""}, false, false},
		{"github workflows", map[string]string{".github/workflows/build.yml": ""}, true, false},
		{"gitlab", map[string]string{".gitlab-ci.yml": ""}, true, false},
		{"circleci", map[string]string{".circleci/config.yml": ""}, true, false},
		{"jenkins", map[string]string{"ci/Jenkinsfile": ""}, true, false},
		{"tests dir", map[string]string{"tests/test_app.py": ""}, false, true},
		{"spec dir upper", map[string]string{"Spec/app_spec.rb": ""}, false, true},
		{"jest dir", map[string]string{"src/__tests__/a.test.js": ""}, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tc.tree)
			inv, err := Scan(root)
			require.NoError(t, err)
			if inv.HasCI != tc.wantCI {
				t.Errorf("HasCI = %v, want %v", inv.HasCI, tc.wantCI)
			}
			if inv.HasTests != tc.wantTests {
				t.Errorf("HasTests = %v, want %v", inv.HasTests, tc.wantTests)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Determinism and isolation
// ---------------------------------------------------------------------------

func TestScan_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json":     `{"dependencies": {"react": "18"}}`,
		"src/index.js":     "",
		"src/lib/util.js":  "",
		"test/index.js":    "",
		"README.md":        "# demo",
		"docs/guide/a.md":  "",
		"docs/guide/b.md":  "",
		"scripts/build.sh": "",
	})

	first, err := Scan(root)
	require.NoError(t, err)
	second, err := Scan(root)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("scans differ (-first +second):\n%s", diff)
	}
}

func TestScan_ParallelIndependentRoots(t *testing.T) {
	const n = 8
	roots := make([]string, n)
	for i := range roots {
		roots[i] = t.TempDir()
		tree := map[string]string{}
		for j := 0; j <= i; j++ {
			tree[fmt.Sprintf("pkg%d/file.go", j)] = ""
		}
		writeTree(t, roots[i], tree)
	}

	results := make([]*Inventory, n)
	var g errgroup.Group
	for i, root := range roots {
		g.Go(func() error {
			inv, err := Scan(root)
			results[i] = inv
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i, inv := range results {
		if inv.FileCount != i+1 {
			t.Errorf("root %d: expected %d files, got %d", i, i+1, inv.FileCount)
		}
		if inv.DirectoryCount != i+1 {
			t.Errorf("root %d: expected %d directories, got %d", i, i+1, inv.DirectoryCount)
		}
	}
}

// ---------------------------------------------------------------------------
// SkipPolicy
// ---------------------------------------------------------------------------

func TestSkipPolicy(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"node_modules", true},
		{".git", true},
		{".github", false},
		{".gitignore", false},
		{"build", true},
		{"build-output", true},
		{"builder", false},
		{"dist", true},
		{"distribution", false},
		{".venv-3.12", true},
		{"venv_old", true},
		{"main.pyc", true},
		{"lib.so", true},
		{"main.go", false},
		{"targets", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DefaultSkipPolicy.Skip(tc.name); got != tc.want {
				t.Errorf("Skip(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}
