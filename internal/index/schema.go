// Package index builds the journal index and its dependency graph, and
// provides an in-memory SQLite catalog for querying a built index.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS experiments (
	position        INTEGER PRIMARY KEY,
	id              TEXT NOT NULL,
	source          TEXT NOT NULL DEFAULT '',
	slug            TEXT NOT NULL DEFAULT '',
	type            TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT '',
	conclusion_type TEXT NOT NULL DEFAULT '',
	conclusion      TEXT NOT NULL DEFAULT '',
	created         TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL DEFAULT '',
	tags            TEXT NOT NULL DEFAULT '[]',
	body            TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tags (
	position INTEGER NOT NULL,
	tag      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS edges (
	source_position INTEGER NOT NULL,
	target          TEXT NOT NULL,
	ordinal         INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_experiments_id ON experiments(id);
CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);
`

// Catalog wraps an in-memory SQLite database holding one built index.
// It is rebuilt from scratch for every query session and never persisted.
type Catalog struct {
	conn *sql.DB
}

// OpenCatalog creates an empty in-memory catalog and applies the schema.
func OpenCatalog() (*Catalog, error) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("index: open catalog: %w", err)
	}
	// Each connection to :memory: is a separate database.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &Catalog{conn: conn}, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	return c.conn.Close()
}
