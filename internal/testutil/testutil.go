// Package testutil provides shared test helpers for setting up journals.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/labjournal/internal/storage"
)

// TestJournal creates a temporary journal root with an experiments
// directory and returns it with a storage.Provider.
func TestJournal(t *testing.T) (string, *storage.FS) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "lab-journal")
	if err := os.MkdirAll(filepath.Join(root, storage.ExperimentsDir), 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteExperiment writes content to experiments/name under root.
func WriteExperiment(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, storage.ExperimentsDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Experiment renders a minimal experiment document with the given id and
// depends_on line value.
func Experiment(id, dependsOn string) string {
	return "---\nid: \"" + id + "\"\nslug: s" + id + "\ntype: exploration\nstatus: pending\ndepends_on: " +
		dependsOn + "\ntags: []\n---\n\n# " + id + "\n"
}
