package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:     "archmap",
		Short:   "Analyze a repository's architecture and render dependency diagrams",
		Version: version,
		Long: `archmap scans a source tree, extracts import relations per language,
builds a typed dependency graph, detects layers, scores architecture
health, and renders draw.io / Mermaid / HTML dashboard outputs.`,
	}

	root.AddCommand(
		newAnalyzeCmd(),
		newRenderCmd(),
		newDiffCmd(),
		newWatchCmd(),
		newServeCmd(),
		newMCPCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
