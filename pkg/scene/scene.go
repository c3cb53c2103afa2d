// Package scene holds a computed layout in presentation form: a list of
// named, absolutely positioned boxes that renderers and clients consume.
//
// A Scene is plain data with JSON and BSON tags. It is what the CLI writes
// next to a document, what the HTTP API returns, and what every renderer in
// pkg/render reads.
package scene

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/geo"
	"github.com/matzehuels/gridlay/pkg/grid"
)

// Scene is a laid out tree.
type Scene struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Boxes  []Box   `json:"boxes" bson:"boxes"`
}

// Box is one leaf of a scene.
type Box struct {
	ID     uint64  `json:"id" bson:"id"`
	Name   string  `json:"name" bson:"name"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Rect returns the box geometry.
func (b Box) Rect() geo.Rect { return geo.R(b.X, b.Y, b.Width, b.Height) }

// FromLayout converts a grid layout into a scene. label names each box;
// boxes are sorted by name, then id.
func FromLayout(l grid.Layout, label func(grid.Handle) string) Scene {
	s := Scene{
		Width:  l.Size.Width,
		Height: l.Size.Height,
		Boxes:  make([]Box, 0, len(l.Table)),
	}
	for h, r := range l.Table {
		s.Boxes = append(s.Boxes, Box{
			ID:     h.Local,
			Name:   label(h),
			X:      r.Origin.X,
			Y:      r.Origin.Y,
			Width:  r.Size.Width,
			Height: r.Size.Height,
		})
	}
	s.Sort()
	return s
}

// FromGrid computes the layout of root and names boxes after the grid's
// display names.
func FromGrid(g *grid.Grid, root grid.Handle) (Scene, error) {
	l, err := g.ComputeLayout(root)
	if err != nil {
		return Scene{}, err
	}
	return FromLayout(l, g.Label), nil
}

// Sort orders boxes by name, then id.
func (s *Scene) Sort() {
	slices.SortFunc(s.Boxes, func(a, b Box) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Box returns the box with the given name.
func (s Scene) Box(name string) (Box, bool) {
	for _, b := range s.Boxes {
		if b.Name == name {
			return b, true
		}
	}
	return Box{}, false
}

// Size returns the scene extent.
func (s Scene) Size() geo.Size { return geo.Sz(s.Width, s.Height) }

// Validate checks that the extent is finite and every box lies inside it.
func (s Scene) Validate() error {
	if !s.Size().Defined() || s.Width < 0 || s.Height < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scene size %v is invalid", s.Size())
	}
	bounds := geo.R(0, 0, s.Width, s.Height)
	for _, b := range s.Boxes {
		r := b.Rect()
		if !r.Size.Defined() || r.Origin.X < bounds.Origin.X || r.Origin.Y < bounds.Origin.Y ||
			r.Right() > bounds.Right() || r.Bottom() > bounds.Bottom() {
			return errs.New(errs.ErrCodeInvalidInput, "box %q at %v lies outside the scene", b.Name, r)
		}
	}
	return nil
}

// Marshal encodes s as indented JSON.
func (s Scene) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal decodes and validates a JSON scene.
func Unmarshal(data []byte) (Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return Scene{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode scene")
	}
	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

// Write encodes s as JSON to w.
func (s Scene) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteFile writes s as JSON to path.
func (s Scene) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := s.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadFile reads a JSON scene from path.
func ReadFile(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
