//go:build !sqlite_fts5

package index

import (
	"database/sql"

	"github.com/starford/labjournal/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; text search uses LIKE on the experiments table.
	return nil
}

func ftsInsert(_ *sql.Tx, _ int, _ models.Experiment, _, _ string) error {
	// Every searchable column is already stored in the experiments table.
	return nil
}

// textSearch performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (c *Catalog) textSearch(query string, f Filter, limit int) ([]SearchResult, error) {
	like := "%" + query + "%"
	q := `
		SELECT e.id, e.slug, e.status, e.title, substr(e.body, 1, 200)
		FROM experiments e
		WHERE (e.title LIKE ? OR e.body LIKE ? OR e.slug LIKE ? OR e.conclusion LIKE ? OR e.tags LIKE ?)`
	args := []any{like, like, like, like, like}
	if cond, condArgs := filterClause(f); cond != "" {
		q += " AND " + cond
		args = append(args, condArgs...)
	}
	q += " ORDER BY e.position LIMIT ?"
	return c.queryResults(q, append(args, limit)...)
}
