package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/ferret"
	"github.com/aretw0/ferret/internal/presentation/graph"
	"github.com/aretw0/ferret/pkg/extract"
)

// nopExtractor satisfies the agent constructor; the graph command only
// inspects topology and never runs a hunt.
type nopExtractor struct{}

func (nopExtractor) Extract(ctx context.Context, url, instruction string) (extract.Record, error) {
	return nil, nil
}

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the workflow graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) representing the hunt workflow.`,
	Run: func(cmd *cobra.Command, args []string) {
		agent, err := ferret.New("", ferret.WithExtractor(nopExtractor{}))
		if err != nil {
			fmt.Printf("Error initializing ferret: %v\n", err)
			os.Exit(1)
		}

		g := agent.Graph()
		fmt.Print(graph.GenerateMermaid(g.Entry(), g.Topology()))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
