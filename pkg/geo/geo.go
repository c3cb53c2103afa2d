// Package geo provides the geometry primitives used by the layout engine.
//
// All values are float64. The same [Rect] type carries three unit systems
// depending on which stage produced it:
//
//   - cell units: integers relative to a template's own width and height
//   - fractional units: values in [0, 1] relative to a node's own box
//   - absolute units: values relative to the root's computed size
//
// [Rect.Relativise] converts cell units into fractional units,
// [Rect.Compose] re-expresses a fractional rectangle in an ancestor's
// fractional space, and [Rect.Scale] converts fractional units into
// absolute units.
package geo

import (
	"fmt"
	"math"

	errs "github.com/matzehuels/gridlay/pkg/errors"
)

// Undefined marks a dimension that has not been set. Leaves with an
// undefined dimension cannot be laid out.
var Undefined = math.NaN()

// Point is a location in the plane.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Size is a width and height.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float64) Size { return Size{Width: w, Height: h} }

// Defined reports whether both dimensions are finite numbers.
func (s Size) Defined() bool { return IsDefined(s.Width) && IsDefined(s.Height) }

// IsDefined reports whether v is a finite number.
func IsDefined(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Max returns the component-wise maximum of s and o.
func (s Size) Max(o Size) Size {
	return Size{Width: math.Max(s.Width, o.Width), Height: math.Max(s.Height, o.Height)}
}

func (s Size) String() string { return fmt.Sprintf("%gx%g", s.Width, s.Height) }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Origin Point `json:"origin" bson:"origin"`
	Size   Size  `json:"size" bson:"size"`
}

// R is shorthand for a rectangle at (x, y) with size w x h.
func R(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// Right returns the x-coordinate of the right edge (exclusive).
func (r Rect) Right() float64 { return r.Origin.X + r.Size.Width }

// Bottom returns the y-coordinate of the bottom edge (exclusive).
func (r Rect) Bottom() float64 { return r.Origin.Y + r.Size.Height }

// Area returns the area of the rectangle, or 0 if it is empty.
func (r Rect) Area() float64 {
	if r.Size.Width <= 0 || r.Size.Height <= 0 {
		return 0
	}
	return r.Size.Width * r.Size.Height
}

// Contains reports whether (x, y) lies inside r. Left and top edges are
// inside; right and bottom edges are outside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Origin.X && x < r.Right() && y >= r.Origin.Y && y < r.Bottom()
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.Origin.X < o.Right() && o.Origin.X < r.Right() &&
		r.Origin.Y < o.Bottom() && o.Origin.Y < r.Bottom()
}

// Relativise divides the x-axis components by width and the y-axis
// components by height, turning a rectangle in cell units into a
// fraction of the reference extent.
func (r Rect) Relativise(width, height float64) (Rect, error) {
	if !(width > 0) || !(height > 0) || !IsDefined(width) || !IsDefined(height) {
		return Rect{}, errs.New(errs.ErrCodeInvalidTemplate,
			"relativise %v against non-positive extent %gx%g", r, width, height)
	}
	return Rect{
		Origin: Point{X: r.Origin.X / width, Y: r.Origin.Y / height},
		Size:   Size{Width: r.Size.Width / width, Height: r.Size.Height / height},
	}, nil
}

// Scale multiplies the x-axis components by sx and the y-axis components
// by sy.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{
		Origin: Point{X: r.Origin.X * sx, Y: r.Origin.Y * sy},
		Size:   Size{Width: r.Size.Width * sx, Height: r.Size.Height * sy},
	}
}

// Compose re-expresses r, a fraction of some box, as a fraction of the box
// that contains that box at outer.
func (r Rect) Compose(outer Rect) Rect {
	return Rect{
		Origin: Point{
			X: outer.Origin.X + r.Origin.X*outer.Size.Width,
			Y: outer.Origin.Y + r.Origin.Y*outer.Size.Height,
		},
		Size: Size{
			Width:  r.Size.Width * outer.Size.Width,
			Height: r.Size.Height * outer.Size.Height,
		},
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}
