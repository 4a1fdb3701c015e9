package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/ppigraph/internal/session"
	"github.com/matsen/ppigraph/internal/viz"
)

var (
	vizOutput   string
	vizLayout   string
	vizRenderer string
	vizSelect   string
)

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizLayout, "layout", "", "Layout: preset, force, circle, or grid (default: config layout)")
	vizCmd.Flags().StringVar(&vizRenderer, "renderer", "cytoscape", "Renderer: cytoscape or echarts")
	vizCmd.Flags().StringVar(&vizSelect, "select", "", "Protein id to select before rendering")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Render the graph to a static HTML page",
	Long: `Render the seed graph to a standalone HTML page.

The cytoscape renderer produces the three-panel viewer without a live
backend. The echarts renderer produces a single graph chart.

Examples:
  # Generate HTML to stdout
  ppi viz > graph.html

  # Highlight Tau and use a force layout
  ppi viz --select tau --layout force --output graph.html

  # ECharts rendering with a circular layout
  ppi viz --renderer echarts --layout circle -o graph.html`,
	Args: cobra.NoArgs,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	layout := cfg.Layout
	if vizLayout != "" {
		layout = vizLayout
	}

	sess := mustOpenSession(cfg)
	defer sess.Close()

	if vizSelect != "" {
		if err := sess.Dispatch(session.Intent{Type: session.IntentSelect, NodeID: vizSelect}); err != nil {
			exitWithError(ExitDataError, "selecting %s: %v", vizSelect, err)
		}
	}

	data := viz.BuildGraphData(sess.Snapshot())

	var buf bytes.Buffer
	switch vizRenderer {
	case "cytoscape":
		opts := viz.DefaultOptions()
		opts.Layout = layout
		html, err := viz.GeneratePage(data, opts)
		if err != nil {
			exitWithError(ExitDataError, "generating HTML: %v", err)
		}
		buf.WriteString(html)
	case "echarts":
		opts := viz.DefaultEChartsOptions()
		opts.Layout = layout
		if err := viz.RenderECharts(&buf, data, opts); err != nil {
			exitWithError(ExitDataError, "rendering chart: %v", err)
		}
	default:
		exitWithError(ExitDataError, "invalid renderer %q: must be cytoscape or echarts", vizRenderer)
	}

	if vizOutput == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(vizOutput, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if humanOutput {
		outputHuman("Wrote %s\n", vizOutput)
		return nil
	}
	return outputJSON(OutputResponse{Output: vizOutput})
}
