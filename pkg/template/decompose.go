package template

import (
	"fmt"

	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/geo"
)

// Placement is the rectangle one label occupies, in cell units.
type Placement struct {
	ID   NodeID
	Rect geo.Rect
}

// ShapeError reports a label whose cells do not form one rectangle.
type ShapeError struct {
	X, Y     int    // offending cell
	Expected NodeID // label whose rectangle was being verified
	Found    NodeID // label actually found at (X, Y)
	Repeat   bool   // Expected already has a rectangle elsewhere
}

func (e *ShapeError) Error() string {
	if e.Repeat {
		return fmt.Sprintf("invalid cell at (%d, %d): label %d forms a second region", e.X, e.Y, e.Expected)
	}
	return fmt.Sprintf("invalid cell at (%d, %d): expected %d, found %d", e.X, e.Y, e.Expected, e.Found)
}

// Decompose extracts one rectangle per distinct label.
//
// Cells are scanned in row-major order. The first unvisited cell of a label
// anchors a candidate rectangle that grows rightward (never past the end of
// its row) and downward (never past the bottom edge). Every cell of the
// candidate must carry the label, and the label must not have been placed
// before; otherwise Decompose fails with an ErrCodeInvalidShape error
// wrapping a [*ShapeError].
//
// Placements are returned in row-major order of their top-left cells.
func (t Template) Decompose() ([]Placement, error) {
	if t.Width < 1 || t.Height < 1 || len(t.Cells) != t.Width*t.Height {
		return nil, errs.New(errs.ErrCodeInvalidTemplate,
			"malformed template %dx%d with %d cells", t.Width, t.Height, len(t.Cells))
	}

	width, height := t.Width, t.Height
	total := width * height

	visited := make([]bool, total)
	seen := make(map[NodeID]struct{})
	var placements []Placement

	for index := 0; index < total; index++ {
		if visited[index] {
			continue
		}
		label := t.Cells[index]
		x, y := index%width, index/width

		// Rightward growth stops at the row end, so a label that closes one
		// row and opens the next is never read as one wide rectangle.
		rectWidth := 1
		for x+rectWidth < width && t.Cells[index+rectWidth] == label {
			rectWidth++
		}

		rectHeight := 1
		for y+rectHeight < height && t.Cells[index+rectHeight*width] == label {
			rectHeight++
		}

		for dy := 0; dy < rectHeight; dy++ {
			for dx := 0; dx < rectWidth; dx++ {
				at := index + dx + dy*width
				if found := t.Cells[at]; found != label || visited[at] {
					return nil, shapeError(&ShapeError{X: x + dx, Y: y + dy, Expected: label, Found: found})
				}
			}
		}

		if _, ok := seen[label]; ok {
			return nil, shapeError(&ShapeError{X: x, Y: y, Expected: label, Found: label, Repeat: true})
		}

		for dy := 0; dy < rectHeight; dy++ {
			for dx := 0; dx < rectWidth; dx++ {
				visited[index+dx+dy*width] = true
			}
		}
		seen[label] = struct{}{}

		placements = append(placements, Placement{
			ID:   label,
			Rect: geo.R(float64(x), float64(y), float64(rectWidth), float64(rectHeight)),
		})
	}

	return placements, nil
}

func shapeError(e *ShapeError) error {
	return errs.Wrap(errs.ErrCodeInvalidShape, e, "label %d does not form a single rectangle", e.Expected)
}
