package scanner

import "strings"

// SkipPolicy decides which entries are left out of the inventory. It is
// consulted during traversal, so an excluded directory is never opened.
type SkipPolicy struct {
	// Names are matched exactly, or as a prefix followed by '.', '-' or '_'.
	Names []string

	// Suffixes exclude files by extension, e.g. ".pyc".
	Suffixes []string
}

// DefaultSkipPolicy covers VCS metadata, dependency and bytecode caches,
// virtual environments, build output and compiled artifacts.
var DefaultSkipPolicy = SkipPolicy{
	Names: []string{
		"node_modules", "__pycache__", ".git", ".venv", "venv",
		"target", "dist", "build", ".next", ".nuxt",
	},
	Suffixes: []string{".pyc", ".class", ".o", ".so"},
}

// Skip reports whether an entry with the given base name is excluded.
func (p SkipPolicy) Skip(name string) bool {
	for _, s := range p.Suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	for _, n := range p.Names {
		if name == n {
			return true
		}
		if rest, ok := strings.CutPrefix(name, n); ok && rest != "" && isNameDelimiter(rest[0]) {
			return true
		}
	}
	return false
}

// isNameDelimiter marks where a skip name ends inside a longer name, so that
// "build-output" is skipped while ".github" and ".gitignore" are kept.
func isNameDelimiter(c byte) bool {
	return c == '.' || c == '-' || c == '_'
}
