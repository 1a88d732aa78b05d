package index

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starford/labjournal/internal/models"
)

// Filter narrows catalog queries. Empty fields match everything.
type Filter struct {
	Status string
	Type   string
	Tag    string
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string   `json:"id"`
	Slug    string   `json:"slug"`
	Status  string   `json:"status"`
	Title   string   `json:"title"`
	Snippet string   `json:"snippet"`
	LeadsTo []string `json:"leads_to"`
}

// Insert adds one experiment, its tags, its forward edges and its search
// entry within a transaction. position is the experiment's place in the
// index and orders every result.
func (c *Catalog) Insert(position int, e models.Experiment, title, body string) error {
	tx, err := c.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(nonNilSlice(e.Tags))

	_, err = tx.Exec(`
		INSERT INTO experiments (position, id, source, slug, type, status,
			conclusion_type, conclusion, created, title, tags, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, position, e.ID, e.Source, e.Slug, e.Type, e.Status,
		e.ConclusionType, e.Conclusion, e.Created, title, string(tagsJSON), body)
	if err != nil {
		return fmt.Errorf("index: insert experiment %s: %w", e.ID, err)
	}

	for _, tag := range e.Tags {
		if _, err := tx.Exec(`INSERT INTO tags (position, tag) VALUES (?, ?)`, position, tag); err != nil {
			return fmt.Errorf("index: insert tag: %w", err)
		}
	}

	if len(e.DependsOn) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO edges (source_position, target, ordinal) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare edge insert: %w", err)
		}
		defer stmt.Close()
		for i, dep := range e.DependsOn {
			if _, err := stmt.Exec(position, dep, i); err != nil {
				return fmt.Errorf("index: insert edge: %w", err)
			}
		}
	}

	// FTS insert (no-op when the FTS5 tag is absent).
	if err := ftsInsert(tx, position, e, title, body); err != nil {
		return err
	}

	return tx.Commit()
}

// Search returns experiments matching query and f in index order. An empty
// query lists every experiment that passes the filter.
func (c *Catalog) Search(query string, f Filter, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return c.list(f, limit)
	}
	return c.textSearch(query, f, limit)
}

func (c *Catalog) list(f Filter, limit int) ([]SearchResult, error) {
	cond, args := filterClause(f)
	q := `SELECT e.id, e.slug, e.status, e.title, substr(e.body, 1, 200) FROM experiments e`
	if cond != "" {
		q += " WHERE " + cond
	}
	q += " ORDER BY e.position LIMIT ?"
	return c.queryResults(q, append(args, limit)...)
}

// LeadsTo returns the ids of experiments that declare a dependency on id,
// in index order.
func (c *Catalog) LeadsTo(id string) ([]string, error) {
	rows, err := c.conn.Query(`
		SELECT e.id
		FROM edges g
		JOIN experiments e ON e.position = g.source_position
		WHERE g.target = ?
		ORDER BY g.source_position, g.ordinal
	`, id)
	if err != nil {
		return nil, fmt.Errorf("index: leads to: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the number of experiments in the catalog.
func (c *Catalog) Count() (int, error) {
	var n int
	if err := c.conn.QueryRow(`SELECT count(*) FROM experiments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

func (c *Catalog) queryResults(q string, args ...any) ([]SearchResult, error) {
	rows, err := c.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Slug, &r.Status, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// The catalog holds a single connection; rows must be released first.
	rows.Close()

	for i := range out {
		if out[i].LeadsTo, err = c.LeadsTo(out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// filterClause renders f as a SQL condition over the experiments table
// aliased as e.
func filterClause(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "e.status = ?")
		args = append(args, f.Status)
	}
	if f.Type != "" {
		conds = append(conds, "e.type = ?")
		args = append(args, f.Type)
	}
	if f.Tag != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM tags t WHERE t.position = e.position AND t.tag = ?)")
		args = append(args, f.Tag)
	}
	return strings.Join(conds, " AND "), args
}
