package graph

import (
	"errors"
	"reflect"
	"testing"
)

// newScenarioStore builds the small tau/shp2/ppi1 graph used across tests.
func newScenarioStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(
		[]Node{
			{ID: "tau", Kind: KindProtein, Label: "Tau"},
			{ID: "shp2", Kind: KindProtein, Label: "Shp2"},
			{ID: "ppi1", Kind: KindInteraction, Label: "Tau.Shp2"},
		},
		[]Edge{
			{ID: "e1", Source: "tau", Target: "ppi1"},
			{ID: "e2", Source: "shp2", Target: "ppi1"},
		},
	)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func TestNewStore_RejectsInvalidSeeds(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		edges   []Edge
		wantErr error
	}{
		{
			name:    "duplicate node id",
			nodes:   []Node{{ID: "a", Kind: KindProtein}, {ID: "a", Kind: KindPaper}},
			wantErr: ErrDuplicateID,
		},
		{
			name:    "empty node id",
			nodes:   []Node{{ID: "", Kind: KindProtein}},
			wantErr: ErrEmptyID,
		},
		{
			name:    "dangling edge target",
			nodes:   []Node{{ID: "a", Kind: KindProtein}},
			edges:   []Edge{{ID: "e1", Source: "a", Target: "b"}},
			wantErr: ErrInvalidReference,
		},
		{
			name:    "duplicate edge id",
			nodes:   []Node{{ID: "a", Kind: KindProtein}, {ID: "b", Kind: KindProtein}},
			edges:   []Edge{{ID: "e1", Source: "a", Target: "b"}, {ID: "e1", Source: "b", Target: "a"}},
			wantErr: ErrDuplicateID,
		},
		{
			name:    "edge without source",
			nodes:   []Node{{ID: "a", Kind: KindProtein}},
			edges:   []Edge{{ID: "e1", Target: "a"}},
			wantErr: ErrEmptySource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStore(tt.nodes, tt.edges)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewStore() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewStore_RejectsUnknownKind(t *testing.T) {
	_, err := NewStore([]Node{{ID: "x", Kind: Kind("gene")}}, nil)
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestNewDefaultStore(t *testing.T) {
	s := NewDefaultStore()
	got := s.Stats()
	want := Stats{Nodes: 7, Edges: 6, Proteins: 4, Interactions: 2, Papers: 1}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestStore_AddEdge(t *testing.T) {
	s := newScenarioStore(t)

	e, err := s.AddEdge("tau", "shp2")
	if err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	if e.ID != "e3" {
		t.Errorf("ID = %q, want %q", e.ID, "e3")
	}
	if e.Style != DefaultStyle() {
		t.Errorf("Style = %+v, want default", e.Style)
	}
	if len(s.ListEdges()) != 3 {
		t.Errorf("expected 3 edges, got %d", len(s.ListEdges()))
	}
}

func TestStore_AddEdge_InvalidReference(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
	}{
		{"missing target", "tau", "ghost"},
		{"missing source", "ghost", "tau"},
		{"missing both", "ghost", "phantom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScenarioStore(t)
			before := s.ListEdges()

			_, err := s.AddEdge(tt.source, tt.target)
			if !errors.Is(err, ErrInvalidReference) {
				t.Fatalf("AddEdge() error = %v, want ErrInvalidReference", err)
			}
			if got := s.ListEdges(); !reflect.DeepEqual(got, before) {
				t.Errorf("edges changed after failed AddEdge: %v", got)
			}
		})
	}
}

func TestStore_AddEdge_AllowsParallelEdges(t *testing.T) {
	s := newScenarioStore(t)

	first, err := s.AddEdge("tau", "shp2")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.AddEdge("tau", "shp2")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Errorf("parallel edges share id %q", first.ID)
	}
	if len(s.ListEdges()) != 4 {
		t.Errorf("expected 4 edges, got %d", len(s.ListEdges()))
	}
}

func TestStore_AddEdge_SkipsTakenIDs(t *testing.T) {
	s, err := NewStore(
		[]Node{{ID: "a", Kind: KindProtein}, {ID: "b", Kind: KindProtein}},
		[]Edge{{ID: "e2", Source: "a", Target: "b"}},
	)
	if err != nil {
		t.Fatal(err)
	}

	e, err := s.AddEdge("b", "a")
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "e3" {
		t.Errorf("ID = %q, want %q", e.ID, "e3")
	}
}

func TestStore_RenameNode(t *testing.T) {
	s := newScenarioStore(t)

	var events []RenameEvent
	s.OnRename(func(ev RenameEvent) { events = append(events, ev) })

	if err := s.RenameNode("tau", "MAPT"); err != nil {
		t.Fatalf("RenameNode failed: %v", err)
	}

	n, err := s.GetNode("tau")
	if err != nil {
		t.Fatal(err)
	}
	if n.Label != "MAPT" {
		t.Errorf("Label = %q, want %q", n.Label, "MAPT")
	}
	if n.ID != "tau" {
		t.Errorf("ID changed to %q", n.ID)
	}

	want := []RenameEvent{{NodeID: "tau", OldLabel: "Tau", NewLabel: "MAPT"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %+v, want %+v", events, want)
	}
}

func TestStore_RenameNode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		nodeID  string
		wantErr error
	}{
		{"interaction node", "ppi1", ErrInvalidKind},
		{"missing node", "ghost", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScenarioStore(t)
			before := s.ListNodes()

			called := false
			s.OnRename(func(RenameEvent) { called = true })

			err := s.RenameNode(tt.nodeID, "X")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RenameNode() error = %v, want %v", err, tt.wantErr)
			}
			if called {
				t.Error("rename listener fired for failed rename")
			}
			if got := s.ListNodes(); !reflect.DeepEqual(got, before) {
				t.Errorf("nodes changed after failed rename: %v", got)
			}
		})
	}
}

func TestStore_RenameNode_PaperIsImmutable(t *testing.T) {
	s := NewDefaultStore()
	err := s.RenameNode("paper1", "PMID: 1")
	if !errors.Is(err, ErrInvalidKind) {
		t.Errorf("RenameNode(paper1) error = %v, want ErrInvalidKind", err)
	}
}

func TestStore_MoveNode(t *testing.T) {
	s := newScenarioStore(t)

	if err := s.MoveNode("ppi1", Position{X: 12.5, Y: -3}); err != nil {
		t.Fatalf("MoveNode failed: %v", err)
	}
	n, _ := s.GetNode("ppi1")
	if n.Position != (Position{X: 12.5, Y: -3}) {
		t.Errorf("Position = %+v", n.Position)
	}

	if err := s.MoveNode("ghost", Position{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("MoveNode(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListNodes_ReturnsCopy(t *testing.T) {
	s := newScenarioStore(t)

	nodes := s.ListNodes()
	nodes[0].Label = "mutated"
	edges := s.ListEdges()
	edges[0].Target = "shp2"

	n, _ := s.GetNode("tau")
	if n.Label != "Tau" {
		t.Errorf("store mutated through ListNodes copy: %q", n.Label)
	}
	if got := s.ListEdges()[0].Target; got != "ppi1" {
		t.Errorf("store mutated through ListEdges copy: %q", got)
	}
}

func TestStore_FindProteinByLabel(t *testing.T) {
	s := NewDefaultStore()

	tests := []struct {
		label   string
		wantID  string
		wantErr error
	}{
		{"Tau", "tau", nil},
		{"snca", "snca", nil},
		{" APP ", "app", nil},
		{"PARK2", "", ErrNotFound},
		{"PMID: 31201283", "", ErrNotFound}, // paper label, not a protein
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			n, err := s.FindProteinByLabel(tt.label)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if n.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", n.ID, tt.wantID)
			}
		})
	}
}

func TestStore_OnChange(t *testing.T) {
	s := newScenarioStore(t)

	changes := 0
	s.OnChange(func() { changes++ })

	s.AddEdge("tau", "shp2")
	s.AddEdge("tau", "ghost") // fails, no change
	s.RenameNode("shp2", "PTPN11")
	s.RenameNode("ppi1", "X") // fails, no change
	s.MoveNode("tau", Position{X: 1, Y: 1})

	if changes != 3 {
		t.Errorf("changes = %d, want 3", changes)
	}
}

func TestStore_ListenerCanReadStore(t *testing.T) {
	s := newScenarioStore(t)

	var label string
	s.OnRename(func(ev RenameEvent) {
		n, _ := s.GetNode(ev.NodeID)
		label = n.Label
	})

	if err := s.RenameNode("tau", "MAPT"); err != nil {
		t.Fatal(err)
	}
	if label != "MAPT" {
		t.Errorf("listener saw label %q, want %q", label, "MAPT")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"protein", KindProtein, false},
		{"ppi", KindInteraction, false},
		{"interaction", KindInteraction, false},
		{"paper", KindPaper, false},
		{"gene", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestErrorKind(t *testing.T) {
	s := newScenarioStore(t)

	_, err := s.AddEdge("tau", "ghost")
	if got := ErrorKind(err); got != "InvalidReference" {
		t.Errorf("ErrorKind = %q, want InvalidReference", got)
	}
	if got := ErrorKind(s.RenameNode("ppi1", "X")); got != "InvalidKind" {
		t.Errorf("ErrorKind = %q, want InvalidKind", got)
	}
	if got := ErrorKind(errors.New("other")); got != "" {
		t.Errorf("ErrorKind = %q, want empty", got)
	}
}
