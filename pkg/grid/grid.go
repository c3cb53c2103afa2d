// Package grid is the handle-based front end to the layout engine.
//
// A [Grid] owns a node arena and hands out opaque [Handle] values instead of
// raw arena indices. Handles carry the grid's instance id, so a handle from
// one grid is rejected by another:
//
//	g := grid.New(nil)
//	a := g.NewLeaf(2, 1)
//	b := g.NewLeaf(1, 2)
//	c := g.NewLeaf(1, 2)
//
//	p, err := g.NewNode(func(l *grid.Lines) error {
//	    return l.Rows(
//	        []grid.Handle{a, a},
//	        []grid.Handle{b, c},
//	        []grid.Handle{b, c},
//	    )
//	})
//
//	result, err := g.ComputeLayout(p)
//
// Local handle ids come from an [Allocator] owned by the caller. Passing the
// same allocator to several grids keeps their local ids disjoint.
//
// A Grid is not safe for concurrent use.
package grid

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/forest"
	"github.com/matzehuels/gridlay/pkg/geo"
	"github.com/matzehuels/gridlay/pkg/layout"
	"github.com/matzehuels/gridlay/pkg/template"
)

// NodeID is a dense arena index.
type NodeID = forest.NodeID

// Handle is a stable reference to a node of one grid.
type Handle struct {
	Instance uuid.UUID `json:"instance"`
	Local    uint64    `json:"local"`
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h == Handle{} }

func (h Handle) String() string {
	return fmt.Sprintf("%s#%d", h.Instance, h.Local)
}

// Layout is a computed layout keyed by handle.
type Layout struct {
	Size  geo.Size
	Table map[Handle]geo.Rect
}

// Grid owns a forest and the handles that point into it.
type Grid struct {
	id       uuid.UUID
	alloc    *Allocator
	forest   *forest.Forest
	toID     map[Handle]NodeID
	toHandle map[NodeID]Handle
	names    map[Handle]string
	byName   map[string]Handle
}

// New creates an empty grid. A nil allocator gives the grid its own.
func New(alloc *Allocator) *Grid {
	return WithCapacity(alloc, 16)
}

// WithCapacity creates an empty grid with room for n nodes.
func WithCapacity(alloc *Allocator, n int) *Grid {
	if alloc == nil {
		alloc = NewAllocator()
	}
	return &Grid{
		id:       uuid.New(),
		alloc:    alloc,
		forest:   forest.WithCapacity(n),
		toID:     make(map[Handle]NodeID, n),
		toHandle: make(map[NodeID]Handle, n),
		names:    make(map[Handle]string),
		byName:   make(map[string]Handle),
	}
}

// ID returns the grid's instance id.
func (g *Grid) ID() uuid.UUID { return g.id }

// Len returns the number of nodes.
func (g *Grid) Len() int { return g.forest.Len() }

// Forest exposes the underlying arena for read-only structural queries.
func (g *Grid) Forest() *forest.Forest { return g.forest }

// NewLeaf adds a leaf. Pass [geo.Undefined] for a dimension that is not
// known yet; layout fails until it is set with SetLeafSize.
func (g *Grid) NewLeaf(width, height float64) Handle {
	return g.register(g.forest.NewLeaf(geo.Sz(width, height)))
}

// NewNode adds a parent whose template is written by fill.
func (g *Grid) NewNode(fill func(*Lines) error) (Handle, error) {
	lines := &Lines{grid: g, builder: template.NewBuilder()}
	if err := fill(lines); err != nil {
		return Handle{}, err
	}
	t, err := lines.builder.Template()
	if err != nil {
		return Handle{}, err
	}
	return g.NewNodeFromTemplate(t)
}

// NewNodeFromTemplate adds a parent over a template of arena ids.
func (g *Grid) NewNodeFromTemplate(t template.Template) (Handle, error) {
	id, err := g.forest.NewParent(t)
	if err != nil {
		return Handle{}, err
	}
	return g.register(id), nil
}

func (g *Grid) register(id NodeID) Handle {
	h := Handle{Instance: g.id, Local: g.alloc.Allocate()}
	g.toID[h] = id
	g.toHandle[id] = h
	return h
}

// NodeID resolves h to its arena index.
func (g *Grid) NodeID(h Handle) (NodeID, error) {
	if h.Instance != g.id {
		return 0, errs.New(errs.ErrCodeNodeNotFound, "handle %s belongs to another grid", h)
	}
	id, ok := g.toID[h]
	if !ok {
		return 0, errs.New(errs.ErrCodeNodeNotFound, "unknown handle %s", h)
	}
	return id, nil
}

// Handle returns the handle of arena node id.
func (g *Grid) Handle(id NodeID) (Handle, bool) {
	h, ok := g.toHandle[id]
	return h, ok
}

// Handles returns every handle in creation order.
func (g *Grid) Handles() []Handle {
	ids := make([]NodeID, 0, len(g.toHandle))
	for id := range g.toHandle {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Handle, len(ids))
	for i, id := range ids {
		out[i] = g.toHandle[id]
	}
	return out
}

// SetName attaches a display name to h. Names are unique within a grid.
func (g *Grid) SetName(h Handle, name string) error {
	if _, err := g.NodeID(h); err != nil {
		return err
	}
	if err := errs.ValidateNodeName(name); err != nil {
		return err
	}
	if other, ok := g.byName[name]; ok && other != h {
		return errs.New(errs.ErrCodeInvalidInput, "name %q is already used by %s", name, other)
	}
	if old, ok := g.names[h]; ok {
		delete(g.byName, old)
	}
	g.names[h] = name
	g.byName[name] = h
	return nil
}

// Name returns the display name of h.
func (g *Grid) Name(h Handle) (string, bool) {
	name, ok := g.names[h]
	return name, ok
}

// Label returns the display name of h, or "#<local>" when it has none.
func (g *Grid) Label(h Handle) string {
	if name, ok := g.names[h]; ok {
		return name
	}
	return fmt.Sprintf("#%d", h.Local)
}

// Lookup finds the handle with the given display name.
func (g *Grid) Lookup(name string) (Handle, bool) {
	h, ok := g.byName[name]
	return h, ok
}

// SetLeafSize replaces the size of leaf h.
func (g *Grid) SetLeafSize(h Handle, width, height float64) error {
	id, err := g.NodeID(h)
	if err != nil {
		return err
	}
	return g.forest.SetLeafSize(id, geo.Sz(width, height))
}

// ComputeLayout lays out the tree rooted at h.
func (g *Grid) ComputeLayout(h Handle, opts ...layout.Option) (Layout, error) {
	root, err := g.NodeID(h)
	if err != nil {
		return Layout{}, err
	}
	l, err := layout.Compute(g.forest, root, opts...)
	if err != nil {
		return Layout{}, err
	}

	table := make(map[Handle]geo.Rect, len(l.Table))
	for id, r := range l.Table {
		table[g.toHandle[id]] = r
	}
	return Layout{Size: l.Size, Table: table}, nil
}

// Clear removes every node and returns all local ids to the allocator.
// Handles issued before Clear are no longer valid.
func (g *Grid) Clear() {
	locals := make([]uint64, 0, len(g.toID))
	for h := range g.toID {
		locals = append(locals, h.Local)
	}
	g.alloc.Free(locals...)

	g.forest.Clear()
	clear(g.toID)
	clear(g.toHandle)
	clear(g.names)
	clear(g.byName)
}
