// Package sink renders a [scene.Scene] into output formats.
//
// # Overview
//
//   - Text: a character grid naming the box that covers each unit cell
//   - SVG: one rectangle and label per box
//   - JSON: the scene itself
//   - PDF and PNG: SVG converted by rsvg-convert
//
// # Text Output
//
// [RenderText] draws one column per layout unit and one line per unit of
// height. Every cell shows the name of the box covering it, padded to the
// widest name; cells no box covers show "<unset>":
//
//	header  header
//	nav     main
//	nav     main
//
// Use [WithTextScale] to sample the layout at a finer or coarser grid.
// Grids larger than [MaxTextCells] fail with INVALID_INPUT; [WithMaxCells]
// changes the limit.
//
// # SVG Output
//
//	svg := sink.RenderSVG(s, sink.WithUnit(40), sink.WithPadding(8))
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] first generate SVG, then convert it via
// [render.ToPDF] and [render.ToPNG]. These require librsvg:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [scene.Scene]: github.com/matzehuels/gridlay/pkg/scene.Scene
// [render.ToPDF]: github.com/matzehuels/gridlay/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/gridlay/pkg/render.ToPNG
package sink
