package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

// Scanner holds the classification tables used by Scan. The zero value is
// not useful; use New for the defaults.
type Scanner struct {
	Skip         SkipPolicy
	Ecosystems   []Ecosystem
	Frameworks   []Framework
	CIMarkers    []string
	TestKeywords []string

	// Logger receives recoverable warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// New returns a Scanner configured with the default tables.
func New() *Scanner {
	return &Scanner{
		Skip:         DefaultSkipPolicy,
		Ecosystems:   DefaultEcosystems,
		Frameworks:   DefaultFrameworks,
		CIMarkers:    DefaultCIMarkers,
		TestKeywords: DefaultTestKeywords,
	}
}

// Scan walks root with the default tables.
func Scan(root string) (*Inventory, error) {
	return New().Scan(root)
}

// Scan walks root and returns its inventory. It fails with ErrPathNotFound or
// ErrNotADirectory; unreadable manifests only add a warning.
func (s *Scanner) Scan(root string) (*Inventory, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, abs)
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, abs)
	}

	inv := &Inventory{
		ProjectName: filepath.Base(abs),
		ProjectPath: abs,
		Files:       []string{},
		Directories: []string{},
	}

	if err := s.walk(abs, "", inv); err != nil {
		return nil, err
	}
	inv.FileCount = len(inv.Files)
	inv.DirectoryCount = len(inv.Directories)

	inv.ProjectTypes = detectProjectTypes(s.Ecosystems, inv.Files, inv.Directories)

	logger := s.logger()
	inv.Frameworks = detectFrameworks(s.Frameworks, abs, func(msg string) {
		logger.Warn("manifest unreadable", "project", inv.ProjectName, "detail", msg)
		inv.Warnings = append(inv.Warnings, msg)
	})

	if _, err := os.Stat(filepath.Join(abs, ".git")); err == nil {
		inv.HasGit = true
	}
	inv.HasCI = hasCI(s.CIMarkers, inv.Files, inv.Directories)
	inv.HasTests = hasTests(s.TestKeywords, inv.Directories)

	return inv, nil
}

// walk records one directory level, sub-directories first and then files,
// and then descends into each kept sub-directory in name order.
func (s *Scanner) walk(dir, rel string, inv *Inventory) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if rel == "" {
			return fmt.Errorf("reading %s: %w", dir, err)
		}
		// Unreadable sub-directories are kept in the inventory but not descended.
		s.logger().Debug("skipping unreadable directory", "path", rel, "error", err)
		return nil
	}

	var subdirs []string
	for _, e := range entries {
		if !e.IsDir() || s.Skip.Skip(e.Name()) {
			continue
		}
		p := path.Join(rel, e.Name())
		inv.Directories = append(inv.Directories, p)
		subdirs = append(subdirs, e.Name())
	}

	for _, e := range entries {
		if e.IsDir() || s.Skip.Skip(e.Name()) {
			continue
		}
		inv.Files = append(inv.Files, path.Join(rel, e.Name()))
	}

	for _, name := range subdirs {
		if err := s.walk(filepath.Join(dir, name), path.Join(rel, name), inv); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default().With("component", "scanner")
}
