package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/ppigraph/internal/graph"
)

var graphKind string

func init() {
	graphNodesCmd.Flags().StringVar(&graphKind, "kind", "", "Only list nodes of this kind (protein, ppi, paper)")
	graphCmd.AddCommand(graphNodesCmd, graphEdgesCmd, graphStatsCmd, graphNeighborsCmd)
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect the seed graph",
}

var graphNodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List nodes",
	Args:  cobra.NoArgs,
	RunE:  runGraphNodes,
}

var graphEdgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "List edges",
	Args:  cobra.NoArgs,
	RunE:  runGraphEdges,
}

var graphStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count nodes by kind and edges",
	Args:  cobra.NoArgs,
	RunE:  runGraphStats,
}

var graphNeighborsCmd = &cobra.Command{
	Use:   "neighbors <node-id>",
	Short: "List the nodes adjacent to a node",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphNeighbors,
}

// filterNodes keeps nodes of kind, or all nodes when kind is empty.
func filterNodes(nodes []graph.Node, kind string) ([]graph.Node, error) {
	if kind == "" {
		return nodes, nil
	}
	k, err := graph.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	out := make([]graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out, nil
}

func printNodes(nodes []graph.Node) {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			n.ID,
			kindColor(string(n.Kind)).Sprint(n.Kind),
			n.Label,
			strconv.FormatFloat(n.Position.X, 'f', -1, 64) + "," + strconv.FormatFloat(n.Position.Y, 'f', -1, 64),
		})
	}
	printTable([]string{"ID", "KIND", "LABEL", "POSITION"}, rows)
}

func runGraphNodes(cmd *cobra.Command, args []string) error {
	sess := mustOpenSession(mustLoadConfig())
	defer sess.Close()

	nodes, err := filterNodes(sess.Store().ListNodes(), graphKind)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		printNodes(nodes)
		return nil
	}
	return outputJSON(nodes)
}

func runGraphEdges(cmd *cobra.Command, args []string) error {
	sess := mustOpenSession(mustLoadConfig())
	defer sess.Close()

	edges := sess.Store().ListEdges()
	if !humanOutput {
		return outputJSON(edges)
	}

	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		style := "solid"
		if e.Style.Dash != "" {
			style = "dashed " + e.Style.Dash
		}
		rows = append(rows, []string{e.ID, e.Source, e.Target, e.Style.Color, style})
	}
	printTable([]string{"ID", "SOURCE", "TARGET", "COLOR", "STYLE"}, rows)
	return nil
}

func runGraphStats(cmd *cobra.Command, args []string) error {
	sess := mustOpenSession(mustLoadConfig())
	defer sess.Close()

	stats := sess.Store().Stats()
	if !humanOutput {
		return outputJSON(stats)
	}

	outputHuman("%s %d\n", headerColor.Sprint("Nodes:"), stats.Nodes)
	outputHuman("  %s %d\n", proteinColor.Sprint("proteins:    "), stats.Proteins)
	outputHuman("  %s %d\n", ppiColor.Sprint("interactions:"), stats.Interactions)
	outputHuman("  %s %d\n", paperColor.Sprint("papers:      "), stats.Papers)
	outputHuman("%s %d\n", headerColor.Sprint("Edges:"), stats.Edges)
	return nil
}

func runGraphNeighbors(cmd *cobra.Command, args []string) error {
	sess := mustOpenSession(mustLoadConfig())
	defer sess.Close()

	nodes, err := sess.Neighbors(args[0])
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			exitWithError(ExitDataError, "%v", err)
		}
		return fmt.Errorf("querying neighbors: %w", err)
	}
	if nodes == nil {
		nodes = []graph.Node{}
	}

	if humanOutput {
		if len(nodes) == 0 {
			outputHuman("%s has no neighbors\n", args[0])
			return nil
		}
		printNodes(nodes)
		return nil
	}
	return outputJSON(nodes)
}
