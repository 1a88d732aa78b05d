// Package storage defines the journal file-system abstraction and the
// lookup of the journal root.
package storage

import "github.com/starford/labjournal/internal/models"

// Provider is the interface for journal file operations. Paths are relative
// to the journal root.
type Provider interface {
	// Root returns the absolute journal root.
	Root() string
	// List returns metadata for the .md files directly inside dir, sorted by file name.
	List(dir string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Create writes content to a new file and fails with apperr.ErrAlreadyExists if path exists.
	Create(path string, content []byte) error
}
