package storage

import (
	"os"
	"path/filepath"

	"github.com/starford/labjournal/internal/apperr"
)

// ExperimentsDir is the journal subdirectory holding experiment documents.
const ExperimentsDir = "experiments"

// TablesDir is the journal subdirectory for auxiliary data tables.
const TablesDir = "tables"

// Resolve locates the journal root. In order it tries:
//   - explicit (relative to cwd), if it already contains an experiments directory
//   - cwd itself, when no explicit path is given
//   - dirName under cwd and each of its ancestors
//   - dirName under the enclosing git root
//
// It returns apperr.ErrNoJournal when none matches.
func Resolve(explicit, cwd, dirName string) (string, error) {
	if explicit != "" {
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(cwd, explicit)
		}
		abs, err := filepath.Abs(explicit)
		if err == nil && hasExperiments(abs) {
			return abs, nil
		}
	}

	start, err := filepath.Abs(cwd)
	if err != nil {
		return "", apperr.ErrNoJournal
	}
	if explicit == "" && hasExperiments(start) {
		return start, nil
	}
	for dir := start; ; dir = filepath.Dir(dir) {
		if candidate := filepath.Join(dir, dirName); hasExperiments(candidate) {
			return candidate, nil
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	if gr, ok := GitRoot(start); ok {
		if candidate := filepath.Join(gr, dirName); hasExperiments(candidate) {
			return candidate, nil
		}
	}
	return "", apperr.ErrNoJournal
}

// GitRoot returns the nearest ancestor of dir (inclusive) containing a .git
// entry.
func GitRoot(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for d := abs; ; d = filepath.Dir(d) {
		if _, err := os.Stat(filepath.Join(d, ".git")); err == nil {
			return d, true
		}
		if filepath.Dir(d) == d {
			return "", false
		}
	}
}

func hasExperiments(root string) bool {
	info, err := os.Stat(filepath.Join(root, ExperimentsDir))
	return err == nil && info.IsDir()
}
