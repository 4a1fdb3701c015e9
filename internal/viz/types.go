// Package viz renders the protein interaction graph as Cytoscape.js pages
// and go-echarts charts.
package viz

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
	Selected string `json:"selected,omitempty"`
}

// Node is a protein, interaction or paper with its derived display state.
type Node struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // "protein", "ppi" or "paper"

	// Display
	Label       string  `json:"label"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Highlighted bool    `json:"highlighted"`
	Opacity     float64 `json:"opacity"`

	// Inline editing
	Editing bool   `json:"editing"`
	Draft   string `json:"draft,omitempty"`

	// Sizing
	Degree int `json:"degree"`
}

// Edge is a styled link between two nodes.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Curve  string `json:"curve,omitempty"`
	Color  string `json:"color,omitempty"`
	Dash   string `json:"dash,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
