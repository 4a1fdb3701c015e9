package viz

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CytoscapeElements represents the Cytoscape.js data format.
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode represents a node in Cytoscape.js format.
type CytoscapeNode struct {
	Data     Node              `json:"data"`
	Position CytoscapePosition `json:"position"`
	Classes  string            `json:"classes,omitempty"`
}

// CytoscapePosition is a model-space coordinate used by the preset layout.
type CytoscapePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CytoscapeEdge represents an edge in Cytoscape.js format.
type CytoscapeEdge struct {
	Data    Edge   `json:"data"`
	Classes string `json:"classes,omitempty"`
}

// ToCytoscapeJSON converts GraphData to Cytoscape.js JSON format.
func (g *GraphData) ToCytoscapeJSON() (string, error) {
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(g.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		elements.Nodes = append(elements.Nodes, CytoscapeNode{
			Data:     n,
			Position: CytoscapePosition{X: n.X, Y: n.Y},
			Classes:  nodeClasses(n),
		})
	}

	for _, e := range g.Edges {
		cyEdge := CytoscapeEdge{Data: e}
		if e.Dash != "" {
			cyEdge.Classes = "predicted"
		}
		elements.Edges = append(elements.Edges, cyEdge)
	}

	jsonBytes, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// nodeClasses maps the derived display state to stylesheet classes.
func nodeClasses(n Node) string {
	var classes []string
	if n.Highlighted {
		classes = append(classes, "highlighted")
	}
	if n.Opacity < 1 {
		classes = append(classes, "dimmed")
	}
	if n.Editing {
		classes = append(classes, "editing")
	}
	return strings.Join(classes, " ")
}
