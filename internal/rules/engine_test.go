package rules

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/catalyst/internal/scanner"
)

func mustParse(t *testing.T, data string) *Document {
	t.Helper()
	doc, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Empty(t, doc.Skipped)
	return doc
}

func emptyInventory() *scanner.Inventory {
	return &scanner.Inventory{
		ProjectName:  "empty",
		Files:        []string{},
		Directories:  []string{},
		ProjectTypes: []string{},
		Frameworks:   []string{},
	}
}

func detectionIDs(res Result) []string {
	ids := []string{}
	for _, d := range res.Detections {
		ids = append(ids, d.ID)
	}
	return ids
}

// --- rule types ---

func TestEvaluate_FileAbsence(t *testing.T) {
	doc := mustParse(t, `
patterns:
  - id: missing-license
    type: file_absence
    check: [LICENSE, LICENSE.md]
`)
	e := NewEngine(doc)

	tests := []struct {
		name  string
		files []string
		issue bool
	}{
		{"absent", []string{"README.md"}, true},
		{"first alternative", []string{"LICENSE"}, false},
		{"second alternative", []string{"LICENSE.md"}, false},
		{"nested path", []string{"pkg/LICENSE"}, false},
		{"raw suffix is not a match", []string{"NOTLICENSE"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := emptyInventory()
			inv.Files = tt.files
			res := e.Evaluate(inv, nil)
			require.Len(t, res.Detections, 1)
			assert.Equal(t, tt.issue, res.Detections[0].IssueFound)
		})
	}
}

func TestEvaluate_DirectoryAbsence(t *testing.T) {
	doc := mustParse(t, `
patterns:
  - id: missing-ci-workflow
    type: directory_absence
    check: [.github/workflows, .gitlab-ci.yml]
`)
	e := NewEngine(doc)

	tests := []struct {
		name  string
		files []string
		dirs  []string
		issue bool
	}{
		{"nothing", nil, nil, true},
		{"directory prefix", nil, []string{".github", ".github/workflows"}, false},
		{"parent only", nil, []string{".github"}, true},
		{"config file marker", []string{".gitlab-ci.yml"}, nil, false},
		{"config file marker as directory does not count", nil, []string{".gitlab-ci.yml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := emptyInventory()
			inv.Files = tt.files
			inv.Directories = tt.dirs
			res := e.Evaluate(inv, nil)
			require.Len(t, res.Detections, 1)
			assert.Equal(t, tt.issue, res.Detections[0].IssueFound)
		})
	}
}

func TestEvaluate_FileQuality(t *testing.T) {
	doc := mustParse(t, `
patterns:
  - id: readme-minimal
    type: file_quality
    check: [README.md, README]
    severity: low
    criteria:
      min_lines: 3
      required_sections: ["## Usage"]
    recommendation:
      template: readme
      reason: say more
`)
	e := NewEngine(doc)

	t.Run("passes", func(t *testing.T) {
		inv := emptyInventory()
		inv.Files = []string{"README.md"}
		fsys := fstest.MapFS{"README.md": {Data: []byte("# T\n\n## Usage\nrun it\n")}}
		res := e.Evaluate(inv, fsys)
		require.Len(t, res.Detections, 1)
		assert.False(t, res.Detections[0].IssueFound)
		assert.Empty(t, res.Recommendations)
	})

	t.Run("fails each criterion independently", func(t *testing.T) {
		inv := emptyInventory()
		inv.Files = []string{"README.md"}
		fsys := fstest.MapFS{"README.md": {Data: []byte("# T\n")}}
		res := e.Evaluate(inv, fsys)
		require.Len(t, res.Detections, 1)
		d := res.Detections[0]
		assert.True(t, d.IssueFound)
		assert.Equal(t, []string{
			"README.md has 1 lines, want at least 3",
			"README.md missing sections: ## Usage",
		}, d.Details)
		require.Len(t, res.Recommendations, 1)
		assert.Equal(t, "readme", res.Recommendations[0].Template)
		assert.Equal(t, 1, res.Summary.LowSeverity)
	})

	t.Run("reads first listed file present", func(t *testing.T) {
		inv := emptyInventory()
		inv.Files = []string{"README"}
		fsys := fstest.MapFS{"README": {Data: []byte("a\nb\n## Usage\n")}}
		res := e.Evaluate(inv, fsys)
		assert.False(t, res.Detections[0].IssueFound)
	})

	t.Run("no file means no issue", func(t *testing.T) {
		res := e.Evaluate(emptyInventory(), fstest.MapFS{})
		require.Len(t, res.Detections, 1)
		assert.False(t, res.Detections[0].IssueFound)
		assert.Empty(t, res.Warnings)
	})

	t.Run("read error warns without an issue", func(t *testing.T) {
		inv := emptyInventory()
		inv.Files = []string{"README.md"}
		res := e.Evaluate(inv, fstest.MapFS{})
		assert.False(t, res.Detections[0].IssueFound)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "README.md")
	})

	t.Run("nil filesystem warns", func(t *testing.T) {
		inv := emptyInventory()
		inv.Files = []string{"README.md"}
		res := e.Evaluate(inv, nil)
		assert.False(t, res.Detections[0].IssueFound)
		assert.Len(t, res.Warnings, 1)
	})
}

// --- applicability and summary ---

func TestEvaluate_NotApplicableIsExcluded(t *testing.T) {
	doc := mustParse(t, `
patterns:
  - id: missing-eslint
    type: file_absence
    check: .eslintrc.json
    applies_when: package.json exists
  - id: missing-readme
    type: file_absence
    check: README.md
`)
	res := NewEngine(doc).Evaluate(emptyInventory(), nil)

	assert.Equal(t, []string{"missing-readme"}, detectionIDs(res))
	assert.Equal(t, 2, res.Summary.TotalPatterns, "non-applicable rules still count as checked")
	assert.Equal(t, 1, res.Summary.IssuesFound)
}

func TestEvaluate_ApplicablePassingIsPresent(t *testing.T) {
	doc := mustParse(t, `
patterns:
  - id: missing-eslint
    type: file_absence
    check: .eslintrc.json
    applies_when: package.json exists
`)
	inv := emptyInventory()
	inv.Files = []string{"package.json", ".eslintrc.json"}
	res := NewEngine(doc).Evaluate(inv, nil)

	require.Len(t, res.Detections, 1)
	assert.False(t, res.Detections[0].IssueFound)
	assert.Nil(t, res.Detections[0].Recommendation)
}

func TestEvaluate_UnknownConditionFailsOpen(t *testing.T) {
	doc, err := Parse([]byte(`
patterns:
  - id: odd
    type: file_absence
    check: x
    applies_when: when it rains
`))
	require.NoError(t, err)
	res := NewEngine(doc).Evaluate(emptyInventory(), nil)
	assert.Equal(t, []string{"odd"}, detectionIDs(res))
	assert.Len(t, res.Warnings, 1)
}

func TestEvaluate_SummaryCounters(t *testing.T) {
	doc := mustParse(t, `
patterns:
  - {id: a, type: file_absence, check: a, severity: high}
  - {id: b, type: file_absence, check: b, severity: high}
  - {id: c, type: file_absence, check: c, severity: medium}
  - {id: d, type: file_absence, check: d, severity: low}
  - {id: e, type: file_absence, check: e, severity: low}
  - {id: f, type: file_absence, check: f, severity: critical}
`)
	inv := emptyInventory()
	inv.Files = []string{"e"}
	res := NewEngine(doc).Evaluate(inv, nil)

	want := Summary{TotalPatterns: 6, IssuesFound: 4, HighSeverity: 2, MediumSeverity: 1, LowSeverity: 1}
	if diff := cmp.Diff(want, res.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	s := res.Summary
	assert.Equal(t, s.IssuesFound, s.HighSeverity+s.MediumSeverity+s.LowSeverity)
}

func TestEvaluate_EmptyProjectWithDefaults(t *testing.T) {
	doc, err := Default()
	require.NoError(t, err)
	res := NewEngine(doc).Evaluate(emptyInventory(), nil)

	assert.Equal(t, len(doc.Rules), res.Summary.TotalPatterns)
	for _, d := range res.Detections {
		if d.Type == TypeFileAbsence || d.Type == TypeDirectoryAbsence {
			assert.True(t, d.IssueFound, "%s should trigger on an empty project", d.ID)
		}
	}
	want := Summary{TotalPatterns: 14, IssuesFound: 7, HighSeverity: 2, MediumSeverity: 2, LowSeverity: 3}
	if diff := cmp.Diff(want, res.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

// --- recommendations ---

func TestEvaluate_VariantSelection(t *testing.T) {
	doc := mustParse(t, `
patterns:
  - id: missing-gitignore
    type: file_absence
    check: .gitignore
    recommendation:
      template: gitignore-generic
      reason: keep junk out
      variants:
        - condition: project_type(node)
          template: gitignore-node
        - condition: requirements.txt or setup.py exists
          template: gitignore-python
`)
	e := NewEngine(doc)

	tests := []struct {
		name  string
		types []string
		files []string
		want  string
	}{
		{"first matching variant", []string{"node", "python"}, []string{"setup.py"}, "gitignore-node"},
		{"second variant", []string{"python"}, []string{"setup.py"}, "gitignore-python"},
		{"base template", []string{"go"}, []string{"go.mod"}, "gitignore-generic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := emptyInventory()
			inv.ProjectTypes = tt.types
			inv.Files = tt.files
			res := e.Evaluate(inv, nil)
			require.Len(t, res.Recommendations, 1)
			assert.Equal(t, tt.want, res.Recommendations[0].Template)
			assert.Equal(t, "keep junk out", res.Recommendations[0].Reason)
			assert.Equal(t, tt.want, res.Detections[0].Recommendation.Template)
		})
	}
}

func TestEvaluate_VariantsOnlyWithoutMatch(t *testing.T) {
	doc := mustParse(t, `
patterns:
  - id: missing-x
    type: file_absence
    check: x
    recommendation:
      variants:
        - condition: project_type(node)
          template: x-node
`)
	res := NewEngine(doc).Evaluate(emptyInventory(), nil)
	require.Len(t, res.Detections, 1)
	assert.True(t, res.Detections[0].IssueFound)
	assert.Nil(t, res.Detections[0].Recommendation)
	assert.Empty(t, res.Recommendations)
}

func TestEvaluate_RecommendationsRankedStably(t *testing.T) {
	doc := mustParse(t, `
patterns:
  - {id: low-1, type: file_absence, check: a, confidence: low, severity: low, recommendation: {template: t1}}
  - {id: med-1, type: file_absence, check: b, confidence: medium, severity: medium, recommendation: {template: t2}}
  - {id: high, type: file_absence, check: c, confidence: high, severity: high, recommendation: {template: t3}}
  - {id: med-2, type: file_absence, check: d, confidence: medium, severity: medium, recommendation: {template: t4}}
`)
	res := NewEngine(doc).Evaluate(emptyInventory(), nil)

	var ids []string
	for _, r := range res.Recommendations {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"high", "med-1", "med-2", "low-1"}, ids)
	assert.Equal(t, []string{"low-1", "med-1", "high", "med-2"}, detectionIDs(res), "detections keep document order")
	for i := 1; i < len(res.Recommendations); i++ {
		assert.GreaterOrEqual(t, res.Recommendations[i-1].PriorityScore, res.Recommendations[i].PriorityScore)
	}
}

func TestEvaluate_DocumentWeightsOverrideScorer(t *testing.T) {
	doc := mustParse(t, `
patterns:
  - {id: a, type: file_absence, check: a, confidence: high, severity: high, recommendation: {template: t}}
scoring:
  high: {weight: 0.5}
`)
	res := NewEngine(doc).Evaluate(emptyInventory(), nil)
	require.Len(t, res.Recommendations, 1)
	assert.InDelta(t, 5.0, res.Recommendations[0].PriorityScore, 1e-9)
}

func TestEvaluate_DoesNotMutateInventory(t *testing.T) {
	doc, err := Default()
	require.NoError(t, err)
	inv := &scanner.Inventory{
		ProjectName:  "app",
		Files:        []string{"package.json"},
		Directories:  []string{"src"},
		ProjectTypes: []string{"node"},
		Frameworks:   []string{"react"},
	}
	before := *inv
	before.Files = append([]string{}, inv.Files...)
	before.Directories = append([]string{}, inv.Directories...)

	res := NewEngine(doc).Evaluate(inv, fstest.MapFS{})
	res.ProjectTypes[0] = "changed"
	res.Frameworks[0] = "changed"

	if diff := cmp.Diff(before, *inv); diff != "" {
		t.Errorf("inventory mutated (-before +after):\n%s", diff)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	doc, err := Default()
	require.NoError(t, err)
	inv := emptyInventory()
	inv.Files = []string{"package.json", "README.md"}
	fsys := fstest.MapFS{"README.md": {Data: []byte("# short\n")}}

	e := NewEngine(doc)
	first := e.Evaluate(inv, fsys)
	second := e.Evaluate(inv, fsys)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}
