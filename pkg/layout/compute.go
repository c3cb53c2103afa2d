package layout

import (
	"fmt"
	"math"
	"slices"
	"strings"

	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/forest"
	"github.com/matzehuels/gridlay/pkg/geo"
)

// DefaultMaxDepth bounds the nesting depth Compute will follow.
const DefaultMaxDepth = 1024

// Source gives read access to nodes. [*forest.Forest] implements it.
//
// If a Source also implements Children(NodeID) []NodeID, Compute checks
// that adjacency agrees with each node's variant.
type Source interface {
	Node(id NodeID) (forest.Node, error)
}

type childLister interface {
	Children(id NodeID) []NodeID
}

// Option configures [Compute].
type Option func(*compositor)

// WithMaxDepth sets the deepest nesting Compute follows before reporting
// ErrCodeCycleDetected. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(c *compositor) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// NodeError identifies the node a layout failed at.
type NodeError struct {
	Node   NodeID
	Path   []NodeID // root first, ending at Node
	Reason string
}

func (e *NodeError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("node %d: %s (path %s)", e.Node, e.Reason, strings.Join(parts, " > "))
}

type compositor struct {
	src      Source
	lister   childLister
	maxDepth int
	path     []NodeID
	onPath   map[NodeID]bool
}

// Compute lays out the tree rooted at root.
//
// The root's intrinsic size becomes the layout size and every leaf below it
// gets a rectangle in that absolute space. Compute is deterministic: the
// same tree always yields an identical Layout.
func Compute(src Source, root NodeID, opts ...Option) (Layout, error) {
	c := &compositor{
		src:      src,
		maxDepth: DefaultMaxDepth,
		onPath:   make(map[NodeID]bool),
	}
	c.lister, _ = src.(childLister)
	for _, opt := range opts {
		opt(c)
	}

	size, table, err := c.compute(root)
	if err != nil {
		return Layout{}, err
	}

	if table == nil {
		// The root itself is a leaf: it fills the whole layout.
		table = map[NodeID]geo.Rect{root: geo.R(0, 0, 1, 1)}
	}
	for id, r := range table {
		table[id] = r.Scale(size.Width, size.Height)
	}
	return Layout{Size: size, Table: table}, nil
}

// compute returns the intrinsic size of id and its leaf descendants as
// fractions of its own box. The table is nil exactly when id is a leaf.
func (c *compositor) compute(id NodeID) (geo.Size, map[NodeID]geo.Rect, error) {
	if c.onPath[id] {
		return geo.Size{}, nil, c.fail(errs.ErrCodeCycleDetected, id, "node is its own ancestor")
	}
	if len(c.path) >= c.maxDepth {
		return geo.Size{}, nil, c.fail(errs.ErrCodeCycleDetected, id,
			fmt.Sprintf("nesting deeper than %d", c.maxDepth))
	}

	n, err := c.src.Node(id)
	if err != nil {
		return geo.Size{}, nil, c.failWith(errs.ErrCodeNodeNotFound, id, "node does not exist", err)
	}

	c.path = append(c.path, id)
	c.onPath[id] = true
	defer func() {
		c.path = c.path[:len(c.path)-1]
		delete(c.onPath, id)
	}()

	switch n := n.(type) {
	case forest.Leaf:
		return c.leaf(id, n)
	case forest.Parent:
		return c.parent(id, n)
	default:
		return geo.Size{}, nil, c.fail(errs.ErrCodeNodeKindMismatch, id, fmt.Sprintf("unknown node variant %T", n))
	}
}

func (c *compositor) leaf(id NodeID, n forest.Leaf) (geo.Size, map[NodeID]geo.Rect, error) {
	if c.lister != nil && len(c.lister.Children(id)) > 0 {
		return geo.Size{}, nil, c.fail(errs.ErrCodeNodeKindMismatch, id, "leaf has children")
	}
	if !n.Size.Defined() {
		return geo.Size{}, nil, c.fail(errs.ErrCodeUndefinedLeafSize, id,
			fmt.Sprintf("leaf size %v is not fully defined", n.Size))
	}
	return n.Size, nil, nil
}

func (c *compositor) parent(id NodeID, n forest.Parent) (geo.Size, map[NodeID]geo.Rect, error) {
	t := n.Template
	if t.Empty() {
		return geo.Size{}, nil, c.fail(errs.ErrCodeNodeKindMismatch, id, "parent has no children")
	}
	if c.lister != nil && !slices.Equal(c.lister.Children(id), t.IDs()) {
		return geo.Size{}, nil, c.fail(errs.ErrCodeNodeKindMismatch, id, "children disagree with template")
	}

	placements, err := t.Decompose()
	if err != nil {
		return geo.Size{}, nil, fmt.Errorf("node %d: %w", id, err)
	}

	var width, height float64
	table := make(map[NodeID]geo.Rect)

	for _, p := range placements {
		rel, err := p.Rect.Relativise(float64(t.Width), float64(t.Height))
		if err != nil {
			return geo.Size{}, nil, c.failWith(errs.ErrCodeInvalidShape, id, "relativise placement", err)
		}

		childSize, childTable, err := c.compute(p.ID)
		if err != nil {
			return geo.Size{}, nil, err
		}

		if len(childTable) == 0 {
			table[p.ID] = rel
		} else {
			for leaf, sub := range childTable {
				table[leaf] = sub.Compose(rel)
			}
		}

		width = math.Max(width, childSize.Width/rel.Size.Width)
		height = math.Max(height, childSize.Height/rel.Size.Height)
	}

	return geo.Sz(width, height), table, nil
}

func (c *compositor) fail(code errs.Code, id NodeID, reason string) error {
	return c.failWith(code, id, reason, nil)
}

func (c *compositor) failWith(code errs.Code, id NodeID, reason string, cause error) error {
	ne := &NodeError{
		Node:   id,
		Path:   append(slices.Clone(c.path), id),
		Reason: reason,
	}
	if cause != nil {
		ne.Reason = reason + ": " + cause.Error()
	}
	return errs.Wrap(code, ne, "layout failed")
}
