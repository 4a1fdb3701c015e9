package viz

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// EChartsOptions configures the go-echarts renderer.
type EChartsOptions struct {
	Title  string
	Layout string // "preset" keeps stored positions, "force" or "circle" let ECharts place nodes
	Width  string
	Height string
}

// DefaultEChartsOptions returns default renderer options.
func DefaultEChartsOptions() EChartsOptions {
	return EChartsOptions{
		Title:  DefaultOptions().Title,
		Layout: "preset",
		Width:  "1200px",
		Height: "800px",
	}
}

// Category order matches the index stored on each GraphNode.
var kindCategories = []struct {
	kind   string
	name   string
	color  string
	symbol string
}{
	{"protein", "Protein", "#4A90D9", "circle"},
	{"ppi", "Interaction", "#E8923A", "diamond"},
	{"paper", "Paper", "#7F8C8D", "rect"},
}

// RenderECharts writes a standalone go-echarts graph page for data.
func RenderECharts(w io.Writer, data *GraphData, o EChartsOptions) error {
	if data == nil {
		return fmt.Errorf("graph cannot be nil")
	}
	layout, err := echartsLayout(o.Layout)
	if err != nil {
		return err
	}

	g := charts.NewGraph()
	g.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	categories := make([]*opts.GraphCategory, len(kindCategories))
	for i, c := range kindCategories {
		categories[i] = &opts.GraphCategory{
			Name:      c.name,
			ItemStyle: &opts.ItemStyle{Color: c.color},
		}
	}

	chartOpts := opts.GraphChart{
		Layout:     layout,
		Roam:       opts.Bool(true),
		Draggable:  opts.Bool(true),
		Categories: categories,
	}
	if layout == "force" {
		chartOpts.Force = &opts.GraphForce{Repulsion: 400, Gravity: 0.1, EdgeLength: 120}
	}

	g.AddSeries("graph", echartsNodes(data), echartsLinks(data),
		charts.WithGraphChartOpts(chartOpts),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "bottom"}),
	)

	return g.Render(w)
}

// echartsLayout maps viewer layout names to ECharts graph layouts.
func echartsLayout(layout string) (string, error) {
	switch layout {
	case "", "preset":
		return "none", nil
	case "force":
		return "force", nil
	case "circle":
		return "circular", nil
	default:
		return "", fmt.Errorf("invalid layout %q for echarts: must be preset, force, or circle", layout)
	}
}

func categoryIndex(kind string) int {
	for i, c := range kindCategories {
		if c.kind == kind {
			return i
		}
	}
	return 0
}

func echartsNodes(data *GraphData) []opts.GraphNode {
	nodes := make([]opts.GraphNode, 0, len(data.Nodes))
	for _, n := range data.Nodes {
		idx := categoryIndex(n.Kind)
		style := &opts.ItemStyle{
			Color:   kindCategories[idx].color,
			Opacity: opts.Float(float32(n.Opacity)),
		}
		if n.Highlighted {
			style.BorderColor = "#ff6b6b"
			style.BorderWidth = 3
		}

		nodes = append(nodes, opts.GraphNode{
			Name:       n.ID,
			X:          float32(n.X),
			Y:          float32(n.Y),
			Value:      float32(n.Degree),
			Category:   idx,
			Symbol:     kindCategories[idx].symbol,
			SymbolSize: 20 + 4*n.Degree,
			ItemStyle:  style,
			Tooltip:    &opts.Tooltip{Show: opts.Bool(true), Formatter: types.FuncStr(n.Kind + ": " + n.Label)},
		})
	}
	return nodes
}

func echartsLinks(data *GraphData) []opts.GraphLink {
	links := make([]opts.GraphLink, 0, len(data.Edges))
	for _, e := range data.Edges {
		style := &opts.LineStyle{Color: e.Color, Width: 2, Type: "solid"}
		if e.Dash != "" {
			style.Type = "dashed"
		}
		links = append(links, opts.GraphLink{
			Source:    e.Source,
			Target:    e.Target,
			LineStyle: style,
		})
	}
	return links
}
