package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/gridlay/pkg/render/sink"
	"github.com/matzehuels/gridlay/pkg/render/tree"
	"github.com/matzehuels/gridlay/pkg/scene"
)

// RenderFormat renders a single format. b is only needed for the dot and
// tree formats and may be nil otherwise.
func RenderFormat(ctx context.Context, sc scene.Scene, b *Built, format string, opts Options) ([]byte, error) {
	dot, err := treeDOT(b, format, opts)
	if err != nil {
		return nil, err
	}
	return renderFormat(ctx, sc, dot, format, opts)
}

// treeDOT describes b's node tree for the dot and tree formats and is
// empty for the others.
func treeDOT(b *Built, format string, opts Options) (string, error) {
	if format != FormatDOT && format != FormatTree {
		return "", nil
	}
	if b == nil {
		return "", fmt.Errorf("%s output needs the node tree", format)
	}
	return tree.ToDOT(b.Grid, b.Root, tree.Options{Detailed: opts.Detailed}), nil
}

// renderFormat reads only sc and dot, never the grid.
func renderFormat(ctx context.Context, sc scene.Scene, dot, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatText:
		return sink.RenderText(sc, sink.WithTextScale(opts.TextScale))
	case FormatSVG:
		return sink.RenderSVG(sc, svgOptions(opts)...), nil
	case FormatPNG:
		return sink.RenderPNG(ctx, sc, sink.WithScale(opts.PNGScale), sink.WithPNGSVGOptions(svgOptions(opts)...))
	case FormatPDF:
		return sink.RenderPDF(ctx, sc, svgOptions(opts)...)
	case FormatJSON:
		return sink.RenderJSON(sc)
	case FormatDOT:
		return []byte(dot), nil
	case FormatTree:
		return tree.RenderSVG(ctx, dot)
	default:
		return nil, ValidateFormat(format)
	}
}

func svgOptions(opts Options) []sink.SVGOption {
	o := []sink.SVGOption{sink.WithUnit(opts.Unit), sink.WithPadding(opts.Padding)}
	if opts.NoLabels {
		o = append(o, sink.WithoutLabels())
	}
	return o
}
