package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlay/pkg/document"
	"github.com/matzehuels/gridlay/pkg/pipeline"
)

// stdoutPath makes render write a single artifact to stdout.
const stdoutPath = "-"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file (single format), base path (multiple), or "-"
	formats []string // text, svg, png, pdf, json, dot, tree
	sizes   []string // name=WxH overrides
	noCache bool     // skip the artifact cache
}

// renderCommand creates the render command for producing artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var ro renderOpts
	opts := pipeline.Options{}
	opts.SetRenderDefaults()

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a document to text, SVG, PNG, PDF, JSON or a tree diagram",
		Long: `Render a document to one or more formats.

Formats:
  text  box names printed on a character grid
  svg   one rectangle per leaf
  png   rasterized SVG (requires rsvg-convert)
  pdf   vector PDF (requires rsvg-convert)
  json  the computed scene
  dot   the node tree as Graphviz DOT
  tree  the node tree rendered as SVG

Artifacts are cached locally; use --refresh to recompute them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ro.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(ro.formats); err != nil {
				return err
			}
			sizes, err := parseSizes(ro.sizes)
			if err != nil {
				return err
			}
			opts.Sizes = sizes
			opts.Formats = ro.formats
			return c.runRender(cmd, args[0], opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", `output file (single format), base path (multiple), or "-" for stdout`)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames(), ", ")+" (comma-separated, default: svg)")
	cmd.Flags().StringSliceVar(&ro.sizes, "size", nil, "override a leaf size as name=WxH (repeatable)")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.Root, "root", "", "render this node instead of the document root")
	cmd.Flags().Float64Var(&opts.Unit, "unit", opts.Unit, "pixels per layout unit (svg, png, pdf)")
	cmd.Flags().Float64Var(&opts.Padding, "padding", opts.Padding, "margin around the drawing in pixels")
	cmd.Flags().Float64Var(&opts.TextScale, "text-scale", opts.TextScale, "character cells per layout unit (text)")
	cmd.Flags().Float64Var(&opts.PNGScale, "png-scale", opts.PNGScale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", false, "omit box names from drawings")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show leaf sizes in tree diagrams")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

// runRender executes the pipeline and writes each artifact.
func (c *CLI) runRender(cmd *cobra.Command, input string, opts pipeline.Options, ro renderOpts) error {
	ctx := cmd.Context()
	if ro.output == stdoutPath && len(ro.formats) != 1 {
		return fmt.Errorf("--output - needs exactly one format, got %d", len(ro.formats))
	}

	doc, err := document.Load(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	runner, err := c.newRunner(ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(ro.formats, ", ")+"...")
	if ro.output != stdoutPath {
		spinner.Start()
	}
	result, err := runner.Execute(ctx, doc, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if ro.output == stdoutPath {
		_, err := cmd.OutOrStdout().Write(result.Artifacts[ro.formats[0]])
		return err
	}

	paths := outputPaths(input, ro.output, ro.formats)
	for _, format := range ro.formats {
		if err := os.WriteFile(paths[format], result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}

	printSuccess("Rendered %s", result.Root)
	for _, format := range ro.formats {
		printFile(paths[format])
	}
	printStats(result.Stats.NodeCount, result.Stats.LeafCount, result.CacheInfo.RenderHit)
	return nil
}

// outputPaths maps each format to its file. A single format writes to output
// as given; several formats use output (or the input name) as a base path.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := outputBase(input)
	if output != "" {
		base = outputBase(output)
	}
	for _, f := range formats {
		paths[f] = base + pipeline.Extensions[f]
	}
	return paths
}
