package rules

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/catalyst/internal/scanner"
)

// Condition is a compiled applies_when or variant expression.
type Condition interface {
	Match(inv *scanner.Inventory) bool
	String() string
}

// CompileCondition parses expr against the closed grammar:
//
//	exists(path)  any_of(path, ...)  all_of(path, ...)  dir_exists(path)
//	project_type(tag, ...)  framework(tag, ...)
//	has_git  has_ci  has_tests  always
//	"a or b exists"
//
// Any form may be negated with a leading "!". An expression outside the
// grammar compiles to a condition that always matches, and ok is false so the
// caller can report it.
func CompileCondition(expr string) (c Condition, ok bool) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return always{}, true
	}
	if strings.HasPrefix(src, "!") {
		inner, ok := CompileCondition(src[1:])
		if !ok {
			return unknown{expr: src}, false
		}
		return not{inner: inner}, true
	}

	switch src {
	case "always":
		return always{}, true
	case "has_git":
		return flag{name: src, get: func(inv *scanner.Inventory) bool { return inv.HasGit }}, true
	case "has_ci":
		return flag{name: src, get: func(inv *scanner.Inventory) bool { return inv.HasCI }}, true
	case "has_tests":
		return flag{name: src, get: func(inv *scanner.Inventory) bool { return inv.HasTests }}, true
	}

	if name, args, isCall := parseCall(src); isCall {
		if len(args) == 0 {
			return unknown{expr: src}, false
		}
		switch name {
		case "exists":
			if len(args) != 1 {
				return unknown{expr: src}, false
			}
			return fileSet{op: name, paths: args}, true
		case "any_of", "all_of":
			return fileSet{op: name, paths: args, all: name == "all_of"}, true
		case "dir_exists":
			if len(args) != 1 {
				return unknown{expr: src}, false
			}
			return dirExists{path: strings.TrimSuffix(args[0], "/")}, true
		case "project_type":
			return tagSet{op: name, tags: args, has: (*scanner.Inventory).HasProjectType}, true
		case "framework":
			return tagSet{op: name, tags: args, has: (*scanner.Inventory).HasFramework}, true
		}
		return unknown{expr: src}, false
	}

	if head, found := strings.CutSuffix(src, " exists"); found {
		var paths []string
		for _, p := range strings.Split(head, " or ") {
			p = strings.TrimSpace(p)
			if p == "" || strings.ContainsAny(p, " ()") {
				return unknown{expr: src}, false
			}
			paths = append(paths, p)
		}
		return fileSet{op: "any_of", paths: paths}, true
	}

	return unknown{expr: src}, false
}

// parseCall splits "name(a, b)" into its name and trimmed arguments.
func parseCall(src string) (string, []string, bool) {
	open := strings.IndexByte(src, '(')
	if open <= 0 || !strings.HasSuffix(src, ")") {
		return "", nil, false
	}
	name := src[:open]
	if strings.ContainsAny(name, " \t") {
		return "", nil, false
	}
	var args []string
	for _, a := range strings.Split(src[open+1:len(src)-1], ",") {
		if a = strings.TrimSpace(a); a != "" {
			args = append(args, a)
		}
	}
	return name, args, true
}

type always struct{}

func (always) Match(*scanner.Inventory) bool { return true }
func (always) String() string                { return "always" }

// unknown is the fail-open result for expressions outside the grammar.
type unknown struct{ expr string }

func (unknown) Match(*scanner.Inventory) bool { return true }
func (u unknown) String() string              { return u.expr }

type not struct{ inner Condition }

func (n not) Match(inv *scanner.Inventory) bool { return !n.inner.Match(inv) }
func (n not) String() string                    { return "!" + n.inner.String() }

type flag struct {
	name string
	get  func(*scanner.Inventory) bool
}

func (f flag) Match(inv *scanner.Inventory) bool { return f.get(inv) }
func (f flag) String() string                    { return f.name }

// fileSet matches root-relative file paths exactly.
type fileSet struct {
	op    string
	paths []string
	all   bool
}

func (f fileSet) Match(inv *scanner.Inventory) bool {
	for _, p := range f.paths {
		if inv.HasFile(p) != f.all {
			return !f.all
		}
	}
	return f.all
}

func (f fileSet) String() string {
	return fmt.Sprintf("%s(%s)", f.op, strings.Join(f.paths, ", "))
}

type dirExists struct{ path string }

func (d dirExists) Match(inv *scanner.Inventory) bool { return inv.HasDirectory(d.path) }
func (d dirExists) String() string                    { return "dir_exists(" + d.path + ")" }

type tagSet struct {
	op   string
	tags []string
	has  func(*scanner.Inventory, string) bool
}

func (t tagSet) Match(inv *scanner.Inventory) bool {
	for _, tag := range t.tags {
		if t.has(inv, tag) {
			return true
		}
	}
	return false
}

func (t tagSet) String() string {
	return fmt.Sprintf("%s(%s)", t.op, strings.Join(t.tags, ", "))
}
