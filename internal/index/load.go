package index

import (
	"log/slog"

	"github.com/starford/labjournal/internal/models"
	"github.com/starford/labjournal/internal/parser"
	"github.com/starford/labjournal/internal/storage"
)

// Load fills an empty catalog from idx. Document bodies and titles are read
// back from store; a document that can no longer be read is loaded with
// metadata only.
func Load(c *Catalog, store storage.Provider, idx *models.JournalIndex, logger *slog.Logger) error {
	for i, e := range idx.Experiments {
		var title, body string
		if e.Source != "" {
			data, err := store.Read(e.Source)
			if err != nil {
				logger.Warn("catalog: read failed", slog.String("path", e.Source), slog.String("error", err.Error()))
			} else {
				res := parser.Parse(data)
				title, body = res.Title, res.Body
			}
		}
		if err := c.Insert(i, e, title, body); err != nil {
			return err
		}
		logger.Debug("catalog: loaded", slog.String("id", e.ID))
	}
	return nil
}
