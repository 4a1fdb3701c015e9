package graph

import (
	"fmt"
	"strings"
	"sync"
)

// RenameEvent reports a successful protein rename.
type RenameEvent struct {
	NodeID   string `json:"node_id"`
	OldLabel string `json:"old_label"`
	NewLabel string `json:"new_label"`
}

// Stats summarizes the graph for the control sidebar.
type Stats struct {
	Nodes        int `json:"nodes"`
	Edges        int `json:"edges"`
	Proteins     int `json:"proteins"`
	Interactions int `json:"interactions"`
	Papers       int `json:"papers"`
}

// Store owns the canonical node and edge collections. All mutations pass
// through it so the referential and kind invariants always hold.
//
// Readers may run concurrently; writers are serialized.
type Store struct {
	mu        sync.RWMutex
	nodes     []Node
	nodeIndex map[string]int
	edges     []Edge
	edgeIndex map[string]int

	listenerMu      sync.Mutex
	renameListeners []func(RenameEvent)
	changeListeners []func()
}

// NewStore creates a store seeded with the given nodes and edges.
// Returns an error if a node id repeats or an edge dangles.
func NewStore(nodes []Node, edges []Edge) (*Store, error) {
	s := &Store{
		nodes:     make([]Node, 0, len(nodes)),
		nodeIndex: make(map[string]int, len(nodes)),
		edges:     make([]Edge, 0, len(edges)),
		edgeIndex: make(map[string]int, len(edges)),
	}

	for _, n := range nodes {
		if err := n.ValidateForCreate(); err != nil {
			return nil, err
		}
		if _, exists := s.nodeIndex[n.ID]; exists {
			return nil, fmt.Errorf("node %s: %w", n.ID, ErrDuplicateID)
		}
		s.nodeIndex[n.ID] = len(s.nodes)
		s.nodes = append(s.nodes, n)
	}

	for _, e := range edges {
		if err := e.ValidateForCreate(); err != nil {
			return nil, err
		}
		if _, exists := s.edgeIndex[e.ID]; exists {
			return nil, fmt.Errorf("edge %s: %w", e.ID, ErrDuplicateID)
		}
		if err := s.checkEndpoints(e.Source, e.Target); err != nil {
			return nil, fmt.Errorf("edge %s: %w", e.ID, err)
		}
		s.edgeIndex[e.ID] = len(s.edges)
		s.edges = append(s.edges, e)
	}

	return s, nil
}

// MustNewStore is like NewStore but panics on invalid seed data.
func MustNewStore(nodes []Node, edges []Edge) *Store {
	s, err := NewStore(nodes, edges)
	if err != nil {
		panic(fmt.Sprintf("graph: invalid seed: %v", err))
	}
	return s
}

// NewDefaultStore returns a store holding the built-in seed graph.
func NewDefaultStore() *Store {
	return MustNewStore(SeedNodes(), SeedEdges())
}

// OnRename registers a listener called after each successful rename.
func (s *Store) OnRename(fn func(RenameEvent)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.renameListeners = append(s.renameListeners, fn)
}

// OnChange registers a listener called after each successful mutation.
func (s *Store) OnChange(fn func()) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.changeListeners = append(s.changeListeners, fn)
}

// AddEdge connects two existing nodes with a new edge carrying a fresh id
// and the default style. Parallel and self edges are allowed.
func (s *Store) AddEdge(source, target string) (Edge, error) {
	s.mu.Lock()
	if err := s.checkEndpoints(source, target); err != nil {
		s.mu.Unlock()
		return Edge{}, err
	}

	e := Edge{
		ID:     s.nextEdgeID(),
		Source: source,
		Target: target,
		Curve:  DefaultCurve,
		Style:  DefaultStyle(),
	}
	s.edgeIndex[e.ID] = len(s.edges)
	s.edges = append(s.edges, e)
	s.mu.Unlock()

	s.notifyChange()
	return e, nil
}

// RenameNode replaces the label of a protein node.
func (s *Store) RenameNode(nodeID, newLabel string) error {
	s.mu.Lock()
	idx, ok := s.nodeIndex[nodeID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", nodeID, ErrNotFound)
	}
	if !s.nodes[idx].IsProtein() {
		s.mu.Unlock()
		return fmt.Errorf("cannot rename %s node %s: %w", s.nodes[idx].Kind, nodeID, ErrInvalidKind)
	}

	event := RenameEvent{
		NodeID:   nodeID,
		OldLabel: s.nodes[idx].Label,
		NewLabel: newLabel,
	}
	s.nodes[idx].Label = newLabel
	s.mu.Unlock()

	s.notifyRename(event)
	s.notifyChange()
	return nil
}

// MoveNode records a new diagram position for a node.
func (s *Store) MoveNode(nodeID string, pos Position) error {
	s.mu.Lock()
	idx, ok := s.nodeIndex[nodeID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", nodeID, ErrNotFound)
	}
	s.nodes[idx].Position = pos
	s.mu.Unlock()

	s.notifyChange()
	return nil
}

// GetNode returns a copy of the node with the given id.
func (s *Store) GetNode(nodeID string) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.nodeIndex[nodeID]
	if !ok {
		return Node{}, fmt.Errorf("%s: %w", nodeID, ErrNotFound)
	}
	return s.nodes[idx], nil
}

// HasNode reports whether a node with the given id exists.
func (s *Store) HasNode(nodeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodeIndex[nodeID]
	return ok
}

// FindProteinByLabel returns the protein whose label matches, ignoring case.
func (s *Store) FindProteinByLabel(label string) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := strings.TrimSpace(label)
	for _, n := range s.nodes {
		if n.IsProtein() && strings.EqualFold(n.Label, want) {
			return n, nil
		}
	}
	return Node{}, fmt.Errorf("protein labelled %q: %w", label, ErrNotFound)
}

// ListNodes returns a copy of all nodes in insertion order.
func (s *Store) ListNodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]Node, len(s.nodes))
	copy(nodes, s.nodes)
	return nodes
}

// ListEdges returns a copy of all edges in insertion order.
func (s *Store) ListEdges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]Edge, len(s.edges))
	copy(edges, s.edges)
	return edges
}

// Stats counts nodes by kind and edges.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Nodes: len(s.nodes), Edges: len(s.edges)}
	for _, n := range s.nodes {
		switch n.Kind {
		case KindProtein:
			st.Proteins++
		case KindInteraction:
			st.Interactions++
		case KindPaper:
			st.Papers++
		}
	}
	return st
}

// checkEndpoints verifies both edge endpoints exist. Caller holds mu.
func (s *Store) checkEndpoints(source, target string) error {
	if _, ok := s.nodeIndex[source]; !ok {
		return fmt.Errorf("source %q: %w", source, ErrInvalidReference)
	}
	if _, ok := s.nodeIndex[target]; !ok {
		return fmt.Errorf("target %q: %w", target, ErrInvalidReference)
	}
	return nil
}

// nextEdgeID returns the first unused "e<N>" id, starting after the current
// edge count. Caller holds mu.
func (s *Store) nextEdgeID() string {
	for i := len(s.edges) + 1; ; i++ {
		candidate := fmt.Sprintf("%s%d", edgeIDPrefix, i)
		if _, taken := s.edgeIndex[candidate]; !taken {
			return candidate
		}
	}
}

func (s *Store) notifyRename(event RenameEvent) {
	s.listenerMu.Lock()
	listeners := append([]func(RenameEvent){}, s.renameListeners...)
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func (s *Store) notifyChange() {
	s.listenerMu.Lock()
	listeners := append([]func(){}, s.changeListeners...)
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
