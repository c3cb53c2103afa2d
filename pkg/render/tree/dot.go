package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gridlay/pkg/forest"
	"github.com/matzehuels/gridlay/pkg/grid"
	"github.com/matzehuels/gridlay/pkg/render"
)

// Options configures structure diagrams.
type Options struct {
	// Detailed adds leaf sizes and parent templates to labels.
	Detailed bool
}

// ToDOT converts the tree rooted at root to Graphviz DOT. Unknown roots
// produce an empty graph.
func ToDOT(g *grid.Grid, root grid.Handle, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	f := g.Forest()
	rootID, err := g.NodeID(root)
	if err != nil {
		buf.WriteString("}\n")
		return buf.String()
	}
	ids := append([]forest.NodeID{rootID}, f.Descendants(rootID)...)

	for _, id := range ids {
		n, err := f.Node(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeName(g, id), strings.Join(fmtAttrs(g, n, opts.Detailed, id), ", "))
	}

	buf.WriteString("\n")
	for _, id := range ids {
		for _, kid := range f.Children(id) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeName(g, id), nodeName(g, kid))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(g *grid.Grid, id forest.NodeID) string {
	h, ok := g.Handle(id)
	if !ok {
		return fmt.Sprintf("#%d", id)
	}
	return g.Label(h)
}

func fmtAttrs(g *grid.Grid, n forest.Node, detailed bool, id forest.NodeID) []string {
	label := nodeName(g, id)
	var attrs []string
	switch n := n.(type) {
	case forest.Leaf:
		if detailed {
			label += "\n" + n.Size.String()
		}
	case forest.Parent:
		if detailed {
			label += "\n" + templateText(g, n)
		}
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return append([]string{fmt.Sprintf("label=%q", label)}, attrs...)
}

func templateText(g *grid.Grid, p forest.Parent) string {
	t := p.Template
	rows := make([]string, t.Height)
	for y := range t.Height {
		cells := make([]string, t.Width)
		for x := range t.Width {
			cells[x] = nodeName(g, t.At(x, y))
		}
		rows[y] = strings.Join(cells, " ")
	}
	return strings.Join(rows, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
