package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlay/pkg/document"
	"github.com/matzehuels/gridlay/pkg/pipeline"
)

// layoutCommand creates the layout command that writes the computed scene as JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		sizes  []string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [document]",
		Short: "Compute the layout of a document",
		Long: `Compute the layout of a document.

The layout command reads a TOML, YAML or JSON document, lays out its root and
writes every leaf's position to <document>.layout.json (the same format as
'render -f json').

Use --root to lay out a different node and --size to override leaf sizes:

  gridlay layout page.toml --root main --size nav=2x3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseSizes(sizes)
			if err != nil {
				return err
			}
			opts.Sizes = parsed
			return c.runLayout(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&opts.Root, "root", "", "lay out this node instead of the document root")
	cmd.Flags().StringSliceVar(&sizes, "size", nil, "override a leaf size as name=WxH (repeatable)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum node nesting depth (default: 1024)")

	return cmd
}

// runLayout loads the document, computes the scene and writes it.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string) error {
	prog := newProgress(c.Logger)
	doc, err := document.Load(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}
	prog.done("Loaded " + input)

	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	sc, err := runner.Layout(ctx, doc, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = outputBase(input) + pipeline.Extensions[pipeline.FormatJSON]
	}
	if err := sc.WriteFile(outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(doc.Names()), len(sc.Boxes), false)
	printNewline()
	printNextStep("Render", "gridlay render -f svg,text "+input)

	return nil
}
