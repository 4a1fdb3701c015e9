// Package storage maintains an ephemeral SQLite query index over the graph.
// The index is rebuilt from the in-memory store and never written to disk.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/ppigraph/internal/graph"
	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenMemoryDB creates an empty in-memory index.
func OpenMemoryDB() (*DB, error) {
	db, err := sql.Open("sqlite", MemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every connection to :memory: gets its own database.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			label TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind);

		CREATE TABLE IF NOT EXISTS edges (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			curve TEXT NOT NULL,
			color TEXT NOT NULL,
			dash TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
		CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
	`
	_, err := db.Exec(schema)
	return err
}

// RebuildFromGraph clears the index and reloads it in one transaction.
// It returns the number of nodes and edges written.
func (d *DB) RebuildFromGraph(nodes []graph.Node, edges []graph.Edge) (int, int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM edges"); err != nil {
		return 0, 0, fmt.Errorf("clearing edges table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM nodes"); err != nil {
		return 0, 0, fmt.Errorf("clearing nodes table: %w", err)
	}

	nodeStmt, err := tx.Prepare(`INSERT INTO nodes (id, kind, label, x, y) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing nodes insert: %w", err)
	}
	defer nodeStmt.Close()

	for _, n := range nodes {
		if _, err := nodeStmt.Exec(n.ID, string(n.Kind), n.Label, n.Position.X, n.Position.Y); err != nil {
			return 0, 0, fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.Prepare(`
		INSERT INTO edges (id, source_id, target_id, curve, color, dash)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing edges insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, e := range edges {
		if _, err := edgeStmt.Exec(e.ID, e.Source, e.Target, e.Curve, e.Style.Color, e.Style.Dash); err != nil {
			return 0, 0, fmt.Errorf("inserting edge %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(nodes), len(edges), nil
}

// CountByKind returns the number of indexed nodes of each kind.
func (d *DB) CountByKind() (map[graph.Kind]int, error) {
	rows, err := d.db.Query(`SELECT kind, COUNT(*) FROM nodes GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("counting nodes by kind: %w", err)
	}
	defer rows.Close()

	counts := make(map[graph.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[graph.Kind(kind)] = n
	}
	return counts, rows.Err()
}

// GetNode returns an indexed node by id.
func (d *DB) GetNode(id string) (graph.Node, error) {
	row := d.db.QueryRow(`SELECT id, kind, label, x, y FROM nodes WHERE id = ?`, id)

	var n graph.Node
	var kind string
	err := row.Scan(&n.ID, &kind, &n.Label, &n.Position.X, &n.Position.Y)
	if err == sql.ErrNoRows {
		return graph.Node{}, fmt.Errorf("node %s: %w", id, graph.ErrNotFound)
	}
	if err != nil {
		return graph.Node{}, fmt.Errorf("querying node: %w", err)
	}
	n.Kind = graph.Kind(kind)
	return n, nil
}
