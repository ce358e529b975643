package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SessionFile is where a project records its session id, relative to a
// directory on the way up from the working directory.
const SessionFile = ".claude/project-session-id"

// parentLevels is how many ancestors of the start directory are searched.
const parentLevels = 4

// FindSessionID looks for SessionFile in start and up to four of its
// parents. The first file found wins, even if it is empty.
func FindSessionID(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for i := 0; i <= parentLevels; i++ {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(SessionFile)))
		if err == nil {
			id := strings.TrimSpace(string(data))
			if id == "" {
				return "", fmt.Errorf("%w: %s is empty", ErrNoSession, filepath.Join(dir, SessionFile))
			}
			return id, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w: %s not found from %s", ErrNoSession, SessionFile, start)
}
