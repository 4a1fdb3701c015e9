package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/ppigraph/internal/graph"
)

// EdgesByNode returns all edges touching the node as source or target.
func (d *DB) EdgesByNode(nodeID string) ([]graph.Edge, error) {
	rows, err := d.db.Query(`
		SELECT id, source_id, target_id, curve, color, dash
		FROM edges
		WHERE source_id = ? OR target_id = ?
		ORDER BY rowid
	`, nodeID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("querying edges by node: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// Neighbors returns the distinct nodes joined to nodeID by an edge in
// either direction. A self-edge makes a node its own neighbor.
func (d *DB) Neighbors(nodeID string) ([]graph.Node, error) {
	if _, err := d.GetNode(nodeID); err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT DISTINCT n.id, n.kind, n.label, n.x, n.y
		FROM edges e
		JOIN nodes n
		  ON n.id = CASE WHEN e.source_id = ? THEN e.target_id ELSE e.source_id END
		WHERE e.source_id = ? OR e.target_id = ?
		ORDER BY n.id
	`, nodeID, nodeID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("querying neighbors: %w", err)
	}
	defer rows.Close()

	var nodes []graph.Node
	for rows.Next() {
		var n graph.Node
		var kind string
		if err := rows.Scan(&n.ID, &kind, &n.Label, &n.Position.X, &n.Position.Y); err != nil {
			return nil, err
		}
		n.Kind = graph.Kind(kind)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// CountEdges returns the total number of indexed edges.
func (d *DB) CountEdges() (int, error) {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM edges").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting edges: %w", err)
	}
	return count, nil
}

// scanEdges scans rows into a slice of edges.
func scanEdges(rows *sql.Rows) ([]graph.Edge, error) {
	var edges []graph.Edge
	for rows.Next() {
		var e graph.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.Curve, &e.Style.Color, &e.Style.Dash); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
