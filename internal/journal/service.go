// Package journal coordinates journal storage, the index builder and the
// scaffolder behind the command surface.
package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/labjournal/internal/apperr"
	"github.com/starford/labjournal/internal/checksum"
	"github.com/starford/labjournal/internal/index"
	"github.com/starford/labjournal/internal/models"
	"github.com/starford/labjournal/internal/scaffold"
	"github.com/starford/labjournal/internal/storage"
)

// Layout names the well-known entries of a journal.
type Layout struct {
	DirName     string // journal directory name looked up during resolution
	IndexFile   string // index file, relative to the root
	SummaryFile string // summary document, relative to the root
}

// DefaultLayout returns the standard journal layout.
func DefaultLayout() Layout {
	return Layout{
		DirName:     "lab-journal",
		IndexFile:   "index.json",
		SummaryFile: "summary.md",
	}
}

// Service runs journal operations against one resolved root.
type Service struct {
	store  storage.Provider
	layout Layout
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new journal service.
func NewService(store storage.Provider, layout Layout, logger *slog.Logger) *Service {
	return &Service{store: store, layout: layout, logger: logger, now: time.Now}
}

// Root returns the absolute journal root.
func (s *Service) Root() string {
	return s.store.Root()
}

// IndexPath returns the absolute path of the index file.
func (s *Service) IndexPath() string {
	return filepath.Join(s.store.Root(), s.layout.IndexFile)
}

// Index builds the index in memory without writing it.
func (s *Service) Index(_ context.Context) (*models.JournalIndex, error) {
	return index.Build(s.store, s.logger)
}

// BuildIndex rebuilds the index and overwrites the index file.
func (s *Service) BuildIndex(ctx context.Context) (*models.JournalIndex, error) {
	idx, data, err := s.encodedIndex(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(s.layout.IndexFile, data); err != nil {
		return nil, err
	}
	return idx, nil
}

// RebuildIfChanged rebuilds the index and writes it only when the encoded
// content differs from the current index file. It reports whether a write
// happened.
func (s *Service) RebuildIfChanged(ctx context.Context) (bool, error) {
	_, data, err := s.encodedIndex(ctx)
	if err != nil {
		return false, err
	}
	if current, err := s.store.Read(s.layout.IndexFile); err == nil && bytes.Equal(current, data) {
		s.logger.Debug("index unchanged", slog.String("checksum", checksum.Short(data)))
		return false, nil
	}
	if err := s.store.Write(s.layout.IndexFile, data); err != nil {
		return false, err
	}
	s.logger.Info("index written",
		slog.String("path", s.IndexPath()),
		slog.String("checksum", checksum.Short(data)))
	return true, nil
}

func (s *Service) encodedIndex(ctx context.Context) (*models.JournalIndex, []byte, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, nil, err
	}
	data, err := index.Encode(idx)
	if err != nil {
		return nil, nil, err
	}
	return idx, data, nil
}

// NewExperiment allocates the next id and writes a new experiment document.
// The index is not touched. It returns the absolute document path.
func (s *Service) NewExperiment(_ context.Context, p scaffold.Params) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("journal: new experiment: %w", err)
	}
	if p.Created.IsZero() {
		p.Created = s.now()
	}

	docs, err := s.store.List(storage.ExperimentsDir)
	if err != nil {
		return "", fmt.Errorf("journal: list experiments: %w", err)
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	id := scaffold.NextID(names)

	rel := filepath.Join(storage.ExperimentsDir, scaffold.FileName(id, p.Slug))
	if err := s.store.Create(rel, scaffold.Render(id, p)); err != nil {
		return "", err
	}
	s.logger.Debug("experiment created", slog.String("id", id), slog.String("path", rel))
	return filepath.Join(s.store.Root(), rel), nil
}

// Show returns the indexed experiment with the given id, including its
// derived LeadsTo.
func (s *Service) Show(ctx context.Context, id string) (models.Experiment, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return models.Experiment{}, err
	}
	e, ok := idx.Find(id)
	if !ok {
		return models.Experiment{}, fmt.Errorf("journal: experiment %s: %w", id, apperr.ErrNotFound)
	}
	return e, nil
}

// ReadDocument returns the raw document of the experiment with the given id.
func (s *Service) ReadDocument(ctx context.Context, id string) ([]byte, error) {
	e, err := s.Show(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.Read(e.Source)
}

// Search builds the index, loads it into an in-memory catalog and queries it.
func (s *Service) Search(ctx context.Context, query string, f index.Filter, limit int) ([]index.SearchResult, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := index.OpenCatalog()
	if err != nil {
		return nil, err
	}
	defer cat.Close()

	if err := index.Load(cat, s.store, idx, s.logger); err != nil {
		return nil, err
	}
	if n, err := cat.Count(); err == nil {
		s.logger.Debug("catalog loaded", slog.Int("experiments", n))
	}
	return cat.Search(query, f, limit)
}

// Init creates a journal at path, or under the enclosing git root (falling
// back to cwd) when path is empty. Existing summary and index files are
// never overwritten. It returns the absolute root.
func Init(path, cwd string, layout Layout, now time.Time) (string, error) {
	root := path
	switch {
	case root == "":
		base := cwd
		if gr, ok := storage.GitRoot(cwd); ok {
			base = gr
		}
		root = filepath.Join(base, layout.DirName)
	case !filepath.IsAbs(root):
		root = filepath.Join(cwd, root)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("journal: resolve root: %w", err)
	}

	for _, dir := range []string{storage.ExperimentsDir, storage.TablesDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return "", fmt.Errorf("journal: create %s: %w", dir, err)
		}
	}
	store, err := storage.NewFS(root)
	if err != nil {
		return "", err
	}

	summary := fmt.Sprintf("# Lab Journal\n\nInitialized %s. No experiments yet.\n", now.Format(time.DateOnly))
	if err := createIfAbsent(store, layout.SummaryFile, []byte(summary)); err != nil {
		return "", err
	}

	empty, err := index.Encode(&models.JournalIndex{Project: filepath.Base(root)})
	if err != nil {
		return "", err
	}
	if err := createIfAbsent(store, layout.IndexFile, empty); err != nil {
		return "", err
	}
	return root, nil
}

func createIfAbsent(store storage.Provider, path string, content []byte) error {
	err := store.Create(path, content)
	if errors.Is(err, apperr.ErrAlreadyExists) {
		return nil
	}
	return err
}
