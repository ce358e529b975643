package output

import (
	"strings"
	"testing"
)

func TestVisualLen(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain", "hello", 5},
		{"empty", "", 0},
		{"bold", "\x1b[1mhello\x1b[0m", 5},
		{"color", "\x1b[31mred\x1b[0m", 3},
		{"multiple sequences", "\x1b[1m\x1b[34mblue bold\x1b[0m", 9},
		{"box drawing", "──", 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := visualLen(tc.input); got != tc.want {
				t.Errorf("visualLen(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  int // expected printed width of output
	}{
		{"needs padding", "hi", 10, 10},
		{"exact width", "hello", 5, 5},
		{"over width", "toolong", 3, 7}, // no truncation
		{"styled", "\x1b[31mred\x1b[0m", 6, 6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := pad(tc.input, tc.width)
			if visualLen(got) != tc.want {
				t.Errorf("pad(%q, %d) width = %d, want %d", tc.input, tc.width, visualLen(got), tc.want)
			}
		})
	}
}

func TestTable_Render(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Rule", "Severity")
	tbl.AddRow("missing-readme", "high")
	tbl.AddRow("missing-editorconfig", "low")

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Rule                  Severity") {
		t.Errorf("expected aligned header, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "─") {
		t.Errorf("expected separator line, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "missing-editorconfig  low") {
		t.Errorf("expected aligned row, got %q", lines[3])
	}
	if tbl.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", tbl.Len())
	}
}

func TestTable_ASCIIRule(t *testing.T) {
	SetNoColor(true)
	SetASCII(true)
	defer func() {
		SetNoColor(false)
		SetASCII(false)
	}()

	tbl := NewTable("Col")
	tbl.AddRow("value")
	lines := strings.Split(tbl.Render(), "\n")
	if lines[1] != "-----" {
		t.Errorf("expected ASCII rule, got %q", lines[1])
	}
}

func TestTable_RowLengths(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("A", "B")
	tbl.AddRow("only")
	tbl.AddRow("x", "y", "dropped")

	out := tbl.Render()
	if strings.Contains(out, "dropped") {
		t.Error("expected extra values to be dropped")
	}
}

func TestTable_EmptyHeaders(t *testing.T) {
	if out := NewTable().Render(); out != "" {
		t.Errorf("expected empty output for empty table, got %q", out)
	}
}

func TestTable_String(t *testing.T) {
	tbl := NewTable("Col1")
	tbl.AddRow("Val1")
	if tbl.String() != tbl.Render() {
		t.Error("String() != Render()")
	}
}

func TestSetNoColor(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)
	if rendered := StyleHeader.Render("test"); strings.Contains(rendered, "\x1b[") {
		t.Error("expected no ANSI codes after SetNoColor(true)")
	}
	if !IsNoColor() {
		t.Error("expected IsNoColor to report true")
	}
}
