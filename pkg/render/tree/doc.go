// Package tree renders the structure of a grid as a Graphviz diagram.
//
// Every node reachable from the root becomes a box; edges run from each
// parent to the children its template places. Leaves show their size and
// parents can show their template when [Options.Detailed] is set.
//
//	dot := tree.ToDOT(g, root, tree.Options{Detailed: true})
//	svg, err := tree.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// Rendering uses go-graphviz, which embeds Graphviz; no system install is
// needed for SVG. PDF and PNG conversion still require rsvg-convert.
package tree
