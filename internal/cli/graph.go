package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prosegen/narrate/pkg/book/graph"
	"github.com/prosegen/narrate/pkg/fable"
)

// newGraphCmd creates the graph command for syntax tree visualization.
func newGraphCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "graph [input.fable]",
		Short: "Render the program's syntax tree as a graph",
		Long: `Render the program's syntax tree as a graph.

The tree is emitted in Graphviz DOT form and rendered to SVG. An output
path ending in .dot writes the DOT source instead. Without an input file,
the embedded sample program is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, .svg (default) or .dot")

	return cmd
}

func runGraph(ctx context.Context, inputs []string, output string) error {
	logger := loggerFromContext(ctx)

	sourceName, source, err := resolveInput(inputs)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if output == "" {
		base := filepath.Base(sourceName)
		output = strings.TrimSuffix(base, filepath.Ext(base)) + ".svg"
	}

	mod, err := fable.Parse(source)
	if err != nil {
		return err
	}

	dot := graph.ToDOT(mod)
	logger.Debug("syntax tree graphed", "source", sourceName, "dot_bytes", len(dot))

	var data []byte
	if strings.HasSuffix(output, ".dot") {
		data = []byte(dot)
	} else {
		data, err = graph.RenderSVG(dot)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Graphed %s", sourceName)
	printFile(output)
	return nil
}
