// Package selection tracks the single selected protein and derives the
// per-node highlight and dim state shown by the graph view.
package selection

import (
	"fmt"
	"sync"

	"github.com/matsen/ppigraph/internal/graph"
)

// Opacity levels applied to nodes.
const (
	OpacityFull   = 1.0
	OpacityDimmed = 0.5
)

// NodeLookup resolves node ids. *graph.Store satisfies it.
type NodeLookup interface {
	GetNode(nodeID string) (graph.Node, error)
}

// Display is the derived visual state of one node.
type Display struct {
	Highlighted bool    `json:"highlighted"`
	Opacity     float64 `json:"opacity"`
}

// Controller holds at most one selected protein node.
type Controller struct {
	nodes NodeLookup

	mu       sync.RWMutex
	selected string // empty when nothing is selected
}

// NewController creates a controller with no selection.
func NewController(nodes NodeLookup) *Controller {
	return &Controller{nodes: nodes}
}

// Select makes nodeID the only selected node, replacing any prior selection.
// Only protein nodes can be selected.
func (c *Controller) Select(nodeID string) error {
	n, err := c.nodes.GetNode(nodeID)
	if err != nil {
		return err
	}
	if !n.IsProtein() {
		return fmt.Errorf("cannot select %s node %s: %w", n.Kind, nodeID, graph.ErrInvalidKind)
	}

	c.mu.Lock()
	c.selected = nodeID
	c.mu.Unlock()
	return nil
}

// Clear removes the selection.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.selected = ""
	c.mu.Unlock()
}

// Selected returns the selected node id and whether one is selected.
func (c *Controller) Selected() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected, c.selected != ""
}

// IsSelected reports whether nodeID is the current selection.
func (c *Controller) IsSelected(nodeID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected != "" && c.selected == nodeID
}

// DeriveDisplay computes the display state of a node under the current
// selection.
func (c *Controller) DeriveDisplay(n graph.Node) Display {
	selected, _ := c.Selected()
	return DeriveDisplay(n, selected)
}

// DisplayAll derives the display state of every node, keyed by node id.
func (c *Controller) DisplayAll(nodes []graph.Node) map[string]Display {
	selected, _ := c.Selected()
	out := make(map[string]Display, len(nodes))
	for _, n := range nodes {
		out[n.ID] = DeriveDisplay(n, selected)
	}
	return out
}

// DeriveDisplay is the pure display rule. selected is "" when nothing is
// selected. Only protein nodes are ever dimmed.
func DeriveDisplay(n graph.Node, selected string) Display {
	d := Display{
		Highlighted: selected != "" && n.ID == selected,
		Opacity:     OpacityFull,
	}
	if selected != "" && n.IsProtein() && n.ID != selected {
		d.Opacity = OpacityDimmed
	}
	return d
}
