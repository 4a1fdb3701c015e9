package viz

import (
	"github.com/matsen/ppigraph/internal/graph"
	"github.com/matsen/ppigraph/internal/session"
)

// BuildGraphData converts a session snapshot into the render view model.
func BuildGraphData(snap session.Snapshot) *GraphData {
	degrees := countDegrees(snap.Edges)

	data := &GraphData{
		Nodes:    make([]Node, 0, len(snap.Nodes)),
		Edges:    make([]Edge, 0, len(snap.Edges)),
		Selected: snap.Selected,
	}

	for _, n := range snap.Nodes {
		data.Nodes = append(data.Nodes, Node{
			ID:          n.ID,
			Kind:        string(n.Kind),
			Label:       n.Label,
			X:           n.Position.X,
			Y:           n.Position.Y,
			Highlighted: n.Display.Highlighted,
			Opacity:     n.Display.Opacity,
			Editing:     n.Editing,
			Draft:       n.Draft,
			Degree:      degrees[n.ID],
		})
	}

	for _, e := range snap.Edges {
		data.Edges = append(data.Edges, newEdge(e))
	}

	return data
}

// countDegrees returns the number of edge endpoints at each node.
// A self-edge counts twice.
func countDegrees(edges []graph.Edge) map[string]int {
	degrees := make(map[string]int)
	for _, e := range edges {
		degrees[e.Source]++
		degrees[e.Target]++
	}
	return degrees
}

func newEdge(e graph.Edge) Edge {
	return Edge{
		ID:     e.ID,
		Source: e.Source,
		Target: e.Target,
		Curve:  e.Curve,
		Color:  e.Style.Color,
		Dash:   e.Style.Dash,
	}
}
