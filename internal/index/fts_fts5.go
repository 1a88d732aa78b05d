//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/labjournal/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS experiments_fts USING fts5(
			position UNINDEXED,
			title,
			body,
			slug,
			conclusion,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, position int, e models.Experiment, title, body string) error {
	_, err := tx.Exec(`
		INSERT INTO experiments_fts (position, title, body, slug, conclusion, tags)
		VALUES (?, ?, ?, ?, ?, ?)
	`, position, title, body, e.Slug, e.Conclusion, strings.Join(e.Tags, " "))
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

// matchExpr quotes every whitespace-separated term so user input is never
// read as FTS5 query syntax. Terms are ANDed.
func matchExpr(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// textSearch performs an FTS5 full-text search and returns matching results with snippets.
func (c *Catalog) textSearch(query string, f Filter, limit int) ([]SearchResult, error) {
	q := `
		SELECT e.id, e.slug, e.status, e.title,
		       snippet(experiments_fts, 2, '<b>', '</b>', '...', 64)
		FROM experiments_fts
		JOIN experiments e ON e.position = experiments_fts.position
		WHERE experiments_fts MATCH ?`
	args := []any{matchExpr(query)}
	if cond, condArgs := filterClause(f); cond != "" {
		q += " AND " + cond
		args = append(args, condArgs...)
	}
	q += " ORDER BY rank LIMIT ?"
	return c.queryResults(q, append(args, limit)...)
}
