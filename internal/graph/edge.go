package graph

// Default edge styling. Colors follow the diagram palette.
const (
	DefaultCurve      = "smoothstep"
	ProteinEdgeColor  = "hsl(215 45% 65%)"
	EvidenceEdgeColor = "hsl(215 75% 50%)"
	DefaultEdgeColor  = ProteinEdgeColor
	PredictedEdgeDash = "4 4"
	edgeIDPrefix      = "e"
)

// EdgeStyle holds cosmetic attributes. It has no behavioral meaning.
type EdgeStyle struct {
	Color string `json:"color,omitempty"`
	Dash  string `json:"dash,omitempty"` // SVG dash pattern, e.g. "4 4"
}

// Edge is a directed link between two nodes.
type Edge struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Target string    `json:"target"`
	Curve  string    `json:"curve,omitempty"`
	Style  EdgeStyle `json:"style"`
}

// DefaultStyle returns the style applied to edges created by a connect gesture.
func DefaultStyle() EdgeStyle {
	return EdgeStyle{Color: DefaultEdgeColor}
}

// Dashed reports whether the edge is drawn with a dash pattern.
func (e Edge) Dashed() bool {
	return e.Style.Dash != ""
}

// ValidateForCreate validates an edge before it is seeded into a store.
func (e *Edge) ValidateForCreate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.Source == "" {
		return ErrEmptySource
	}
	if e.Target == "" {
		return ErrEmptyTarget
	}
	return nil
}
