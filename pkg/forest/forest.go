// Package forest provides the node arena the layout engine operates on.
//
// Nodes live in a growable slice and reference each other only through
// dense [NodeID] indices. A node is either a [Leaf] with an intrinsic size
// or a [Parent] whose template subdivides its box among children. The
// children of a parent are exactly the distinct ids in its template.
//
// Parents can only be created over children that already exist, so a
// Forest built through this API never contains a cycle.
//
// # Adjacency
//
// The forest keeps children and parents lists per node for structural
// queries (roots, reachability). The layout compositor does not need them
// beyond a consistency check.
//
// # Concurrency
//
// A Forest is not safe for concurrent mutation. Concurrent reads are safe
// once construction is finished.
package forest

import (
	"slices"

	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/geo"
	"github.com/matzehuels/gridlay/pkg/template"
)

// NodeID is a dense arena index.
type NodeID = template.NodeID

// Node is the closed set of node variants: [Leaf] and [Parent].
type Node interface {
	node()
}

// Leaf is a node with an intrinsic size and no children.
type Leaf struct {
	Size geo.Size
}

// Parent is a node whose box is subdivided by a template.
type Parent struct {
	Template template.Template
}

func (Leaf) node()   {}
func (Parent) node() {}

// Forest owns every node plus children/parents adjacency.
type Forest struct {
	nodes    []Node
	children [][]NodeID
	parents  [][]NodeID
}

// New creates an empty forest.
func New() *Forest {
	return WithCapacity(16)
}

// WithCapacity creates an empty forest with room for n nodes.
func WithCapacity(n int) *Forest {
	return &Forest{
		nodes:    make([]Node, 0, n),
		children: make([][]NodeID, 0, n),
		parents:  make([][]NodeID, 0, n),
	}
}

// Len returns the number of nodes.
func (f *Forest) Len() int { return len(f.nodes) }

// NewLeaf adds a leaf of the given size. Undefined dimensions are allowed
// here and rejected when a layout reaches the leaf.
func (f *Forest) NewLeaf(size geo.Size) NodeID {
	id := NodeID(len(f.nodes))
	f.nodes = append(f.nodes, Leaf{Size: size})
	f.children = append(f.children, nil)
	f.parents = append(f.parents, nil)
	return id
}

// NewParent adds a parent over t. Every id in t must already exist.
func (f *Forest) NewParent(t template.Template) (NodeID, error) {
	if t.Empty() {
		return 0, errs.New(errs.ErrCodeInvalidTemplate, "parent needs a non-empty template")
	}
	kids := t.IDs()
	for _, kid := range kids {
		if !f.Contains(kid) {
			return 0, errs.New(errs.ErrCodeNodeNotFound, "template references unknown node %d", kid)
		}
	}

	id := NodeID(len(f.nodes))
	for _, kid := range kids {
		f.parents[kid] = append(f.parents[kid], id)
	}
	f.nodes = append(f.nodes, Parent{Template: t})
	f.children = append(f.children, kids)
	f.parents = append(f.parents, nil)
	return id, nil
}

// Contains reports whether id names a node in the forest.
func (f *Forest) Contains(id NodeID) bool {
	return id >= 0 && int(id) < len(f.nodes)
}

// Node returns the node stored at id.
func (f *Forest) Node(id NodeID) (Node, error) {
	if !f.Contains(id) {
		return nil, errs.New(errs.ErrCodeNodeNotFound, "node %d does not exist", id)
	}
	return f.nodes[id], nil
}

// Children returns the distinct children of id in ascending order.
func (f *Forest) Children(id NodeID) []NodeID {
	if !f.Contains(id) {
		return nil
	}
	return slices.Clone(f.children[id])
}

// Parents returns the parents of id in creation order.
func (f *Forest) Parents(id NodeID) []NodeID {
	if !f.Contains(id) {
		return nil
	}
	return slices.Clone(f.parents[id])
}

// IsLeaf reports whether id is a leaf.
func (f *Forest) IsLeaf(id NodeID) bool {
	if !f.Contains(id) {
		return false
	}
	_, ok := f.nodes[id].(Leaf)
	return ok
}

// Roots returns every node without a parent, in ascending order.
func (f *Forest) Roots() []NodeID {
	var roots []NodeID
	for id := range f.nodes {
		if len(f.parents[id]) == 0 {
			roots = append(roots, NodeID(id))
		}
	}
	return roots
}

// Descendants returns every node reachable from id, excluding id itself,
// in ascending order.
func (f *Forest) Descendants(id NodeID) []NodeID {
	if !f.Contains(id) {
		return nil
	}
	seen := make(map[NodeID]bool)
	stack := slices.Clone(f.children[id])
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, f.children[cur]...)
	}
	out := make([]NodeID, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// SetLeafSize replaces the size of an existing leaf.
func (f *Forest) SetLeafSize(id NodeID, size geo.Size) error {
	n, err := f.Node(id)
	if err != nil {
		return err
	}
	if _, ok := n.(Leaf); !ok {
		return errs.New(errs.ErrCodeNodeKindMismatch, "node %d is not a leaf", id)
	}
	f.nodes[id] = Leaf{Size: size}
	return nil
}

// Clear removes every node.
func (f *Forest) Clear() {
	f.nodes = f.nodes[:0]
	f.children = f.children[:0]
	f.parents = f.parents[:0]
}
