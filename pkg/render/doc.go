// Package render turns computed layouts into pictures.
//
// # Overview
//
//   - [sink] renders a [scene.Scene] as text, SVG, JSON, PNG or PDF
//   - [tree] renders the node structure (parents and their children) as a
//     Graphviz diagram
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg). Both subpackages use them.
//
//	svg := sink.RenderSVG(s)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/gridlay/pkg/render/sink
// [tree]: github.com/matzehuels/gridlay/pkg/render/tree
// [scene.Scene]: github.com/matzehuels/gridlay/pkg/scene.Scene
package render
