package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wayfarerhq/wayfarer/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the journey's navigation graph as Mermaid",
	Long: `Prints a Mermaid flowchart of the journey: screens grouped by agent,
edges for navigate and close actions, dotted edges for handoffs. Paste
the output into any Mermaid renderer.`,
	Run: func(cmd *cobra.Command, args []string) {
		journey, globals, err := loadJourney(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		out := graph.Mermaid(journey, globals, nil)

		if path, _ := cmd.Flags().GetString("output"); path != "" {
			if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Graph written to %s\n", path)
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("output", "o", "", "Write the graph to a file instead of stdout")
}
