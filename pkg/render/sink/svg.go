package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/gridlay/pkg/scene"
)

const (
	defaultUnit    = 40.0
	defaultPadding = 8.0

	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 24.0
)

// DefaultPalette fills boxes in scene order.
var DefaultPalette = []string{"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462", "#b3de69", "#fccde5"}

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	unit    float64
	padding float64
	palette []string
	labels  bool
}

// WithUnit sets the pixel size of one layout unit (default 40).
func WithUnit(px float64) SVGOption {
	return func(r *svgRenderer) {
		if px > 0 {
			r.unit = px
		}
	}
}

// WithPadding sets the margin around the scene in pixels (default 8).
func WithPadding(px float64) SVGOption {
	return func(r *svgRenderer) {
		if px >= 0 {
			r.padding = px
		}
	}
}

// WithPalette sets the fill colours, used round-robin.
func WithPalette(colors ...string) SVGOption {
	return func(r *svgRenderer) {
		if len(colors) > 0 {
			r.palette = colors
		}
	}
}

// WithoutLabels omits box names.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG draws every box of s as a labelled rectangle.
func RenderSVG(s scene.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{unit: defaultUnit, padding: defaultPadding, palette: DefaultPalette, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	w := s.Width*r.unit + 2*r.padding
	h := s.Height*r.unit + 2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	buf.WriteString(`  <style>.box { stroke: #333; stroke-width: 1; } .label { font-family: sans-serif; fill: #222; }</style>` + "\n")

	for i, b := range s.Boxes {
		x := r.padding + b.X*r.unit
		y := r.padding + b.Y*r.unit
		bw := b.Width * r.unit
		bh := b.Height * r.unit
		fmt.Fprintf(&buf, `  <rect id="box-%d" class="box" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			b.ID, x, y, bw, bh, r.palette[i%len(r.palette)])
		if r.labels && b.Name != "" {
			fmt.Fprintf(&buf, `  <text class="label" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
				x+bw/2, y+bh/2, fontSize(bw, bh, len([]rune(b.Name))), escapeXML(b.Name))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func fontSize(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
