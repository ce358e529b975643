package output

// Glyphs is the symbol set used in reports and tables.
type Glyphs struct {
	OK      string
	Warning string
	Error   string
	Info    string
	Search  string
	Rocket  string
	Arrow   string

	Rule     string
	BarFull  string
	BarEmpty string
	Up       string
	Down     string
	Flat     string
}

// Unicode is the default symbol set.
var Unicode = Glyphs{
	OK:      "✅",
	Warning: "⚠️",
	Error:   "❌",
	Info:    "ℹ️",
	Search:  "🔍",
	Rocket:  "🚀",
	Arrow:   "→",

	Rule:     "─",
	BarFull:  "█",
	BarEmpty: "░",
	Up:       "▲",
	Down:     "▼",
	Flat:     "─",
}

// ASCII replaces every symbol with plain text for consoles that cannot show
// emoji or box-drawing characters.
var ASCII = Glyphs{
	OK:      "[OK]",
	Warning: "[!]",
	Error:   "[X]",
	Info:    "[i]",
	Search:  "[?]",
	Rocket:  "[++]",
	Arrow:   "->",

	Rule:     "-",
	BarFull:  "#",
	BarEmpty: ".",
	Up:       "^",
	Down:     "v",
	Flat:     "-",
}

var current = Unicode

// SetASCII switches the package-level symbol set.
func SetASCII(enabled bool) {
	if enabled {
		current = ASCII
		return
	}
	current = Unicode
}

// Symbols returns the active symbol set.
func Symbols() Glyphs {
	return current
}
