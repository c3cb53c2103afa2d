// Package template describes how a parent box is subdivided among its
// children.
//
// A [Template] is a rectangular grid of child labels stored row-major.
// Every label's cells must together form exactly one axis-aligned
// rectangle; [Template.Decompose] checks that and extracts one rectangle
// per label:
//
//	// a a
//	// b c
//	// b c
//	t, _ := template.New(2, 3, []template.NodeID{a, a, b, c, b, c})
//	placements, err := t.Decompose()
//	// a@(0,0 2x1) b@(0,1 1x2) c@(1,1 1x2)
//
// Templates are usually assembled row by row with a [Builder], or parsed
// from text rows with [Parse].
package template

import (
	"fmt"
	"slices"
	"strings"

	errs "github.com/matzehuels/gridlay/pkg/errors"
)

// NodeID is a dense, zero-based index into a node arena. It is only
// meaningful within the arena that issued it.
type NodeID int

// Template is a Width x Height grid of child ids in row-major order.
type Template struct {
	Width  int
	Height int
	Cells  []NodeID
}

// New creates a template after checking that the grid is non-empty, that
// cells has exactly width*height entries and that no id is negative.
func New(width, height int, cells []NodeID) (Template, error) {
	if width < 1 || height < 1 {
		return Template{}, errs.New(errs.ErrCodeInvalidTemplate,
			"template must be at least 1x1, got %dx%d", width, height)
	}
	if len(cells) != width*height {
		return Template{}, errs.New(errs.ErrCodeInvalidTemplate,
			"template %dx%d needs %d cells, got %d", width, height, width*height, len(cells))
	}
	for i, id := range cells {
		if id < 0 {
			return Template{}, errs.New(errs.ErrCodeInvalidTemplate,
				"negative node id %d at (%d, %d)", id, i%width, i/width)
		}
	}
	return Template{Width: width, Height: height, Cells: slices.Clone(cells)}, nil
}

// At returns the label of cell (x, y).
func (t Template) At(x, y int) NodeID {
	return t.Cells[y*t.Width+x]
}

// IDs returns the distinct child ids in ascending order.
func (t Template) IDs() []NodeID {
	ids := slices.Clone(t.Cells)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Empty reports whether the template has no cells.
func (t Template) Empty() bool {
	return t.Width*t.Height == 0 || len(t.Cells) == 0
}

// String renders the grid one row per line.
func (t Template) String() string {
	var b strings.Builder
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			if x > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d", t.At(x, y))
		}
		if y < t.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
