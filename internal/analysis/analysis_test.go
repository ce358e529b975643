package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/catalyst/internal/report"
	"github.com/blackwell-systems/catalyst/internal/rules"
	"github.com/blackwell-systems/catalyst/internal/scanner"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func defaultRules(t *testing.T) *rules.Document {
	t.Helper()
	doc, err := rules.Default()
	require.NoError(t, err)
	return doc
}

func TestRun_NodeProject(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"package.json": `{"dependencies": {"react": "^18.0.0", "express": "^4.0.0"}}`,
		".gitignore":   "dist/\n",
		"README.md":    "# app\n",
		"src/index.js": "console.log(1)\n",
	})

	a, err := Run(root, defaultRules(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"node"}, a.Inventory.ProjectTypes)
	assert.Equal(t, []string{"react", "express"}, a.Result.Frameworks)

	byID := make(map[string]rules.Detection)
	for _, d := range a.Result.Detections {
		byID[d.ID] = d
	}
	assert.False(t, byID["missing-gitignore"].IssueFound)
	assert.True(t, byID["gitignore-incomplete"].IssueFound, ".gitignore lacks node_modules/")
	assert.True(t, byID["readme-minimal"].IssueFound)
	assert.True(t, byID["missing-eslint"].IssueFound)
	_, hasBuild := byID["missing-build-workflow"]
	assert.False(t, hasBuild, "build workflow rule needs .github/workflows")

	score, err := report.ParseHealthScore(a.Report)
	require.NoError(t, err)
	assert.Equal(t, a.HealthScore, score)
	assert.Contains(t, a.Report, "Type: Node")
	assert.Contains(t, a.Report, "Frameworks: React, Express")
}

func TestRun_EmptyProject(t *testing.T) {
	doc := defaultRules(t)
	a, err := Run(t.TempDir(), doc)
	require.NoError(t, err)

	assert.Zero(t, a.Inventory.FileCount)
	assert.Zero(t, a.Inventory.DirectoryCount)
	assert.Empty(t, a.Inventory.ProjectTypes)
	assert.Equal(t, len(doc.Rules), a.Result.Summary.TotalPatterns)
	assert.Equal(t, 0, a.HealthScore)
	assert.Equal(t, "Needs Improvement", a.Rating)
	assert.Contains(t, a.Report, "Type: Unknown")
}

func TestRun_Errors(t *testing.T) {
	doc := defaultRules(t)

	_, err := Run(filepath.Join(t.TempDir(), "missing"), doc)
	assert.True(t, errors.Is(err, scanner.ErrPathNotFound), "got %v", err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Run(file, doc)
	assert.True(t, errors.Is(err, scanner.ErrNotADirectory), "got %v", err)
}

func TestRun_Warnings(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"package.json": "{not json"})

	doc, err := rules.Parse([]byte(`
patterns:
  - id: odd
    type: file_absence
    check: x
    applies_when: on tuesdays
`))
	require.NoError(t, err)

	a, err := Run(root, doc)
	require.NoError(t, err)
	warnings := a.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "package.json")
	assert.Contains(t, warnings[1], "on tuesdays")
}

func TestRun_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"go.mod":                   "module x\n",
		"cmd/x/main.go":            "package main\n",
		"internal/a/a.go":          "package a\n",
		".github/workflows/ci.yml": "on: push\n",
	})
	p := New(defaultRules(t))

	first, err := p.Run(root)
	require.NoError(t, err)
	second, err := p.Run(root)
	require.NoError(t, err)
	assert.Equal(t, first.Report, second.Report)
	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, first.Inventory, second.Inventory)
}

func TestRunAll_KeepsArgumentOrder(t *testing.T) {
	var roots []string
	for _, name := range []string{"alpha", "beta", "gamma", "delta"} {
		root := filepath.Join(t.TempDir(), name)
		writeFiles(t, root, map[string]string{"README.md": strings.Repeat("line\n", 12)})
		roots = append(roots, root)
	}

	results, err := New(defaultRules(t)).RunAll(context.Background(), roots)
	require.NoError(t, err)
	require.Len(t, results, len(roots))
	for i, a := range results {
		assert.Equal(t, filepath.Base(roots[i]), a.Inventory.ProjectName)
	}
}

func TestRunAll_FailsOnBadRoot(t *testing.T) {
	roots := []string{t.TempDir(), filepath.Join(t.TempDir(), "missing")}
	_, err := New(defaultRules(t)).RunAll(context.Background(), roots)
	assert.True(t, errors.Is(err, scanner.ErrPathNotFound), "got %v", err)
	assert.Contains(t, err.Error(), "missing")
}
