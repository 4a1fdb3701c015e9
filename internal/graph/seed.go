package graph

// SeedNodes returns the built-in starting nodes: four proteins, two
// interactions and the paper supporting the first interaction.
func SeedNodes() []Node {
	return []Node{
		{ID: "tau", Kind: KindProtein, Label: "Tau", Position: Position{X: 100, Y: 100}},
		{ID: "shp2", Kind: KindProtein, Label: "Shp2", Position: Position{X: 300, Y: 100}},
		{ID: "app", Kind: KindProtein, Label: "APP", Position: Position{X: 200, Y: 300}},
		{ID: "ppi1", Kind: KindInteraction, Label: "Tau.Shp2.PMID:31201283", Position: Position{X: 200, Y: 150}},
		{ID: "paper1", Kind: KindPaper, Label: "PMID: 31201283", Position: Position{X: 200, Y: 200}},
		{ID: "snca", Kind: KindProtein, Label: "SNCA", Position: Position{X: 400, Y: 250}},
		{ID: "ppi2", Kind: KindInteraction, Label: "APP.SNCA.PMID:30192847", Position: Position{X: 300, Y: 275}},
	}
}

// SeedEdges returns the built-in starting edges. The tau-app edge is a
// dashed, predicted association.
func SeedEdges() []Edge {
	protein := EdgeStyle{Color: ProteinEdgeColor}
	return []Edge{
		{ID: "e1", Source: "tau", Target: "ppi1", Curve: DefaultCurve, Style: protein},
		{ID: "e2", Source: "shp2", Target: "ppi1", Curve: DefaultCurve, Style: protein},
		{ID: "e3", Source: "ppi1", Target: "paper1", Curve: DefaultCurve, Style: EdgeStyle{Color: EvidenceEdgeColor}},
		{ID: "e4", Source: "app", Target: "ppi2", Curve: DefaultCurve, Style: protein},
		{ID: "e5", Source: "snca", Target: "ppi2", Curve: DefaultCurve, Style: protein},
		{ID: "e6", Source: "tau", Target: "app", Curve: DefaultCurve, Style: EdgeStyle{Color: ProteinEdgeColor, Dash: PredictedEdgeDash}},
	}
}
