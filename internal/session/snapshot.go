package session

import (
	"github.com/matsen/ppigraph/internal/editor"
	"github.com/matsen/ppigraph/internal/graph"
	"github.com/matsen/ppigraph/internal/selection"
	"github.com/matsen/ppigraph/internal/tasks"
	"github.com/matsen/ppigraph/internal/upload"
)

// NodeView is a node with its derived display and edit state.
type NodeView struct {
	graph.Node
	Display selection.Display `json:"display"`
	Editing bool              `json:"editing"`
	Draft   string            `json:"draft,omitempty"`
}

// Snapshot is everything the rendering layer needs to draw the viewer.
type Snapshot struct {
	Nodes     []NodeView   `json:"nodes"`
	Edges     []graph.Edge `json:"edges"`
	Selected  string       `json:"selected,omitempty"`
	Stats     graph.Stats  `json:"stats"`
	Task      *tasks.Task  `json:"task,omitempty"`
	LastEvent *tasks.Event `json:"last_event,omitempty"`
	CSV       *upload.File `json:"csv,omitempty"`
	Image     *upload.File `json:"image,omitempty"`
	ImageURL  string       `json:"image_url,omitempty"`
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes := s.store.ListNodes()
	selected, _ := s.selection.Selected()
	drafts := s.editors.Active()

	snap := Snapshot{
		Nodes:    make([]NodeView, len(nodes)),
		Edges:    s.store.ListEdges(),
		Selected: selected,
		Stats:    s.store.Stats(),
	}
	for i, n := range nodes {
		draft, editing := drafts[n.ID]
		snap.Nodes[i] = NodeView{
			Node:    n,
			Display: selection.DeriveDisplay(n, selected),
			Editing: editing,
			Draft:   draft,
		}
	}

	if t, ok := s.runner.Current(); ok {
		snap.Task = &t
	}
	if ev, ok := s.LastEvent(); ok {
		snap.LastEvent = &ev
	}
	if f, ok := s.uploads.CSV(); ok {
		snap.CSV = &f
	}
	if f, ok := s.uploads.Image(); ok {
		snap.Image = &f
		snap.ImageURL = f.DataURL()
	}
	return snap
}

// EditState returns the edit state of a node.
func (s *Session) EditState(nodeID string) editor.State {
	return s.editors.State(nodeID)
}
