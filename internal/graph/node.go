// Package graph defines the protein-interaction graph model and the store
// that owns it.
package graph

import "fmt"

// Kind tags a node with its display and behavior class.
type Kind string

// Node kinds. Interaction nodes use the "ppi" wire name of the diagram.
const (
	KindProtein     Kind = "protein"
	KindInteraction Kind = "ppi"
	KindPaper       Kind = "paper"
)

// ValidKinds lists the supported node kinds.
var ValidKinds = []Kind{KindProtein, KindInteraction, KindPaper}

// ParseKind converts a kind name to a Kind. "interaction" is accepted as an
// alias for "ppi".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "protein":
		return KindProtein, nil
	case "ppi", "interaction":
		return KindInteraction, nil
	case "paper":
		return KindPaper, nil
	default:
		return "", fmt.Errorf("invalid kind %q (valid: %v)", s, ValidKinds)
	}
}

// Position is a 2D diagram coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a protein, interaction or paper in the graph.
type Node struct {
	// Identity: never changes for the lifetime of the node
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	// Display
	Label    string   `json:"label"`
	Position Position `json:"position"`
}

// IsProtein reports whether the node can be selected and renamed.
func (n Node) IsProtein() bool {
	return n.Kind == KindProtein
}

// ValidateForCreate validates a node before it is seeded into a store.
func (n *Node) ValidateForCreate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if _, err := ParseKind(string(n.Kind)); err != nil {
		return fmt.Errorf("node %s: %w", n.ID, err)
	}
	return nil
}
