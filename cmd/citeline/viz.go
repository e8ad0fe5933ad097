package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matsen/citeline/internal/views"
	"github.com/matsen/citeline/internal/viz"
	"github.com/spf13/cobra"
)

var vizOutput string
var vizLayout string

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizLayout, "layout", "force", "Layout algorithm: force, circle, grid or concentric")
	rootCmd.AddCommand(vizCmd)
}

// VizResult is the JSON response when the page is written to a file.
type VizResult struct {
	Output string `json:"output"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Generate citation graph visualization",
	Long: `Generate an interactive HTML visualization of the citation graph.

Cited articles are blue and sized by how often the corpus cites them;
articles that only cite others are gray. Click a node to highlight its
neighborhood, shift-click to open its DOI link.

Examples:
  # Generate HTML to stdout
  citeline viz > graph.html

  # Use circular layout
  citeline viz --layout circle --output graph.html`,
	Args: cobra.NoArgs,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	return withService(func(svc *views.Service, _ string) error {
		citations, err := svc.Citations(context.Background())
		if err != nil {
			exitOnViewError(err)
		}

		graph := viz.BuildGraph(citations)
		opts := viz.DefaultOptions()
		opts.Layout = vizLayout
		html, err := viz.GenerateHTML(graph, opts)
		if err != nil {
			exitWithError(ExitError, "generating HTML: %v", err)
		}

		if vizOutput == "" {
			fmt.Print(html)
			return nil
		}
		if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
			exitWithError(ExitError, "writing output file: %v", err)
		}
		if humanOutput {
			fmt.Printf("Visualization written to %s (%d articles, %d citations)\n", vizOutput, len(graph.Nodes), len(graph.Edges))
			return nil
		}
		return outputJSON(VizResult{Output: vizOutput, Nodes: len(graph.Nodes), Edges: len(graph.Edges)})
	})
}
