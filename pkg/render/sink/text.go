package sink

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/scene"
)

// Unset is printed for cells no box covers.
const Unset = "<unset>"

// MaxTextCells is the default limit on width*height of a text rendering.
const MaxTextCells = 1 << 20

// TextOption configures text rendering.
type TextOption func(*textRenderer)

type textRenderer struct {
	scale    float64
	unset    string
	maxCells int
}

// WithTextScale samples the layout scale cells per layout unit (default 1).
func WithTextScale(s float64) TextOption {
	return func(r *textRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithUnset replaces the marker for uncovered cells.
func WithUnset(marker string) TextOption {
	return func(r *textRenderer) { r.unset = marker }
}

// WithMaxCells changes the largest grid RenderText will draw
// (default [MaxTextCells]).
func WithMaxCells(n int) TextOption {
	return func(r *textRenderer) {
		if n > 0 {
			r.maxCells = n
		}
	}
}

// RenderText prints the scene as a grid of box names. Scenes that would
// need more than the cell limit fail with INVALID_INPUT.
func RenderText(s scene.Scene, opts ...TextOption) ([]byte, error) {
	r := textRenderer{scale: 1, unset: Unset, maxCells: MaxTextCells}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := extent(s.Width, r.scale), extent(s.Height, r.scale)
	if w == 0 || h == 0 {
		return nil, nil
	}
	if w*h > float64(r.maxCells) {
		return nil, errs.New(errs.ErrCodeInvalidInput,
			"text output of %gx%g cells exceeds the limit of %d", w, h, r.maxCells)
	}
	width, height := int(w), int(h)

	data := make([]string, width*height)
	for i := range data {
		data[i] = r.unset
	}
	pad := runewidth.StringWidth(r.unset)

	for _, b := range s.Boxes {
		x0, x1 := cells(b.X, r.scale, width), cells(b.X+b.Width, r.scale, width)
		y0, y1 := cells(b.Y, r.scale, height), cells(b.Y+b.Height, r.scale, height)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				data[x+y*width] = b.Name
			}
		}
		if x1 > x0 && y1 > y0 {
			pad = max(pad, runewidth.StringWidth(b.Name))
		}
	}

	var buf strings.Builder
	var line strings.Builder
	for i, name := range data {
		line.WriteString(runewidth.FillRight(name, pad))
		line.WriteByte(' ')
		if (i+1)%width == 0 {
			buf.WriteString(strings.TrimRight(line.String(), " "))
			buf.WriteByte('\n')
			line.Reset()
		}
	}
	return []byte(buf.String()), nil
}

// extent rounds a length to whole cells; negative and NaN lengths are empty.
func extent(v, scale float64) float64 {
	n := math.Round(v * scale)
	if !(n > 0) {
		return 0
	}
	return n
}

// cells converts a coordinate to a cell index in [0, hi].
func cells(v, scale float64, hi int) int {
	return int(min(extent(v, scale), float64(hi)))
}
