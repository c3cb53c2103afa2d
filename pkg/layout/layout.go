// Package layout computes absolute leaf rectangles for a tree of templated
// boxes.
//
// # Algorithm
//
// [Compute] walks the tree post-order. A leaf reports its intrinsic size.
// A parent decomposes its template into one cell rectangle per child,
// converts each into a fraction of its own box, and recurses. Leaf
// children are recorded at that fraction directly; a parent child's table
// is re-expressed in the current box and merged, so only leaves survive.
// The parent's size is the smallest that satisfies every child:
//
//	width  = max over children of child.width  / fraction.width
//	height = max over children of child.height / fraction.height
//
// Finally every fraction is scaled by the root's size, giving absolute
// coordinates in one space.
//
// # Example
//
//	f := forest.New()
//	a := f.NewLeaf(geo.Sz(2, 1))
//	b := f.NewLeaf(geo.Sz(1, 2))
//	c := f.NewLeaf(geo.Sz(1, 2))
//	t, _ := template.New(2, 3, []template.NodeID{a, a, b, c, b, c})
//	p, _ := f.NewParent(t)
//
//	l, err := layout.Compute(f, p)
//	// l.Size == 2x3, l.Table[b] == (0,1 1x2)
//
// # Errors
//
// Any failure aborts the whole computation; there is no partial layout.
// Errors carry an [errors.Code] from pkg/errors and, where a node is at
// fault, a [*NodeError] with the path from the root.
package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/gridlay/pkg/forest"
	"github.com/matzehuels/gridlay/pkg/geo"
)

// NodeID is a dense arena index.
type NodeID = forest.NodeID

// Layout is the result of a computation: the root's absolute size and one
// absolute rectangle per leaf. Parents never appear in Table.
type Layout struct {
	Size  geo.Size
	Table map[NodeID]geo.Rect
}

// Leaves returns the leaf ids in ascending order.
func (l Layout) Leaves() []NodeID {
	ids := make([]NodeID, 0, len(l.Table))
	for id := range l.Table {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Rect returns the rectangle of leaf id.
func (l Layout) Rect(id NodeID) (geo.Rect, bool) {
	r, ok := l.Table[id]
	return r, ok
}

// Equal reports whether l and o have the same size and the same
// rectangle for every leaf.
func (l Layout) Equal(o Layout) bool {
	if l.Size != o.Size || len(l.Table) != len(o.Table) {
		return false
	}
	for id, r := range l.Table {
		if or, ok := o.Table[id]; !ok || or != r {
			return false
		}
	}
	return true
}

// Entry is one leaf rectangle of a layout.
type Entry struct {
	ID   NodeID
	Rect geo.Rect
}

// Entries returns the table sorted by position (top to bottom, left to
// right) and then by id.
func (l Layout) Entries() []Entry {
	out := make([]Entry, 0, len(l.Table))
	for id, r := range l.Table {
		out = append(out, Entry{ID: id, Rect: r})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(a.Rect.Origin.Y, b.Rect.Origin.Y); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Rect.Origin.X, b.Rect.Origin.X); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
