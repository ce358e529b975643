package output

import (
	"fmt"
	"strings"
)

// ScoreBar renders a visual progress bar for a 0-100 score.
// Example: "████████░░ 80/100"
func ScoreBar(score int, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := score * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	g := Symbols()
	bar := strings.Repeat(g.BarFull, filled) + strings.Repeat(g.BarEmpty, width-filled)
	return fmt.Sprintf("%s %s", ForScore(score).Render(bar), StyleMuted.Render(fmt.Sprintf("%d/100", score)))
}

// TrendArrow returns a styled indicator for a change in health score.
func TrendArrow(delta int) string {
	g := Symbols()
	switch {
	case delta > 0:
		return StyleSuccess.Render(fmt.Sprintf("%s +%d", g.Up, delta))
	case delta < 0:
		return StyleError.Render(fmt.Sprintf("%s %d", g.Down, delta))
	}
	return StyleMuted.Render(g.Flat)
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat(Symbols().Rule, 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
