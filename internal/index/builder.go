package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/starford/labjournal/internal/models"
	"github.com/starford/labjournal/internal/parser"
	"github.com/starford/labjournal/internal/storage"
)

// Build scans the experiments directory of store and returns a complete
// index. Documents are visited in file name order; documents without a
// frontmatter block or without an id are skipped and logged. Every
// experiment's LeadsTo is recomputed from scratch.
func Build(store storage.Provider, logger *slog.Logger) (*models.JournalIndex, error) {
	docs, err := store.List(storage.ExperimentsDir)
	if err != nil {
		return nil, fmt.Errorf("index: list experiments: %w", err)
	}

	experiments := make([]models.Experiment, 0, len(docs))
	for _, d := range docs {
		data, err := store.Read(d.Path)
		if err != nil {
			return nil, fmt.Errorf("index: %w", err)
		}
		fm, ok := parser.Extract(data)
		if !ok {
			logger.Warn("skip "+d.Name+": no valid frontmatter", slog.String("path", d.Path))
			continue
		}
		exp, err := parser.DecodeExperiment(fm)
		if err != nil {
			logger.Warn("skip "+d.Name+": no valid frontmatter",
				slog.String("path", d.Path), slog.String("error", err.Error()))
			continue
		}
		exp.Source = d.Path
		experiments = append(experiments, exp)
	}

	linkReverse(experiments)

	logger.Info("indexed experiments", slog.Int("count", len(experiments)))
	return &models.JournalIndex{
		Project:     filepath.Base(store.Root()),
		Experiments: experiments,
	}, nil
}

// linkReverse sets LeadsTo on every experiment to the ids of the experiments
// that depend on it, in visitation order. Dependencies on unknown ids
// produce buckets nobody reads.
func linkReverse(experiments []models.Experiment) {
	leadsTo := make(map[string][]string)
	for _, e := range experiments {
		for _, dep := range e.DependsOn {
			leadsTo[dep] = append(leadsTo[dep], e.ID)
		}
	}
	for i := range experiments {
		experiments[i].LeadsTo = append([]string{}, leadsTo[experiments[i].ID]...)
	}
}

// Encode serializes idx as indented JSON with a trailing newline. Output is
// byte-identical for identical input.
func Encode(idx *models.JournalIndex) ([]byte, error) {
	out := models.JournalIndex{
		Project:     idx.Project,
		Experiments: make([]models.Experiment, len(idx.Experiments)),
	}
	for i, e := range idx.Experiments {
		e.DependsOn = nonNilSlice(e.DependsOn)
		e.Tags = nonNilSlice(e.Tags)
		e.LeadsTo = nonNilSlice(e.LeadsTo)
		out.Experiments[i] = e
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("index: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
