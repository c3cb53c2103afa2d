package document

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/geo"
	"github.com/matzehuels/gridlay/pkg/grid"
	"github.com/matzehuels/gridlay/pkg/template"
)

// Build validates the document and creates a grid holding the root and
// every name it reaches, plus those reached from extra. It returns the
// handle of the root. alloc may be nil.
//
// Nodes are created depth first from the root, then from each extra name
// in order, so equal documents produce identical arenas. Names nothing
// reaches are never built, so their templates cannot fail the build. A
// label that names nothing fails with NODE_NOT_FOUND; a node that reaches
// itself through templates fails with CYCLE_DETECTED.
func (d *Document) Build(alloc *grid.Allocator, extra ...string) (*grid.Grid, grid.Handle, error) {
	if err := d.Validate(); err != nil {
		return nil, grid.Handle{}, err
	}
	root, err := d.RootName()
	if err != nil {
		return nil, grid.Handle{}, err
	}

	b := &builder{
		doc:     d,
		grid:    grid.WithCapacity(alloc, len(d.Leaves)+len(d.Nodes)),
		handles: make(map[string]grid.Handle),
		onPath:  make(map[string]bool),
	}

	rootHandle, err := b.build(root)
	if err != nil {
		return nil, grid.Handle{}, err
	}
	for _, name := range extra {
		if _, err := b.build(name); err != nil {
			return nil, grid.Handle{}, err
		}
	}
	return b.grid, rootHandle, nil
}

type builder struct {
	doc     *Document
	grid    *grid.Grid
	handles map[string]grid.Handle
	path    []string
	onPath  map[string]bool
}

func (b *builder) build(name string) (grid.Handle, error) {
	if h, ok := b.handles[name]; ok {
		return h, nil
	}
	if b.onPath[name] {
		cycle := append(append([]string{}, b.path...), name)
		return grid.Handle{}, errs.New(errs.ErrCodeCycleDetected,
			"node %q refers to itself: %s", name, strings.Join(cycle, " > "))
	}

	var h grid.Handle
	if leaf, ok := b.doc.Leaves[name]; ok {
		h = b.grid.NewLeaf(dimension(leaf.Width), dimension(leaf.Height))
	} else if node, ok := b.doc.Nodes[name]; ok {
		var err error
		if h, err = b.node(name, node); err != nil {
			return grid.Handle{}, err
		}
	} else {
		return grid.Handle{}, errs.New(errs.ErrCodeNodeNotFound, "unknown label %q", name)
	}

	if err := b.grid.SetName(h, name); err != nil {
		return grid.Handle{}, err
	}
	b.handles[name] = h
	return h, nil
}

func (b *builder) node(name string, n Node) (grid.Handle, error) {
	b.path = append(b.path, name)
	b.onPath[name] = true
	defer func() {
		b.path = b.path[:len(b.path)-1]
		delete(b.onPath, name)
	}()

	resolve := func(label string) (template.NodeID, error) {
		h, err := b.build(label)
		if err != nil {
			return 0, err
		}
		return b.grid.NodeID(h)
	}

	t, err := template.Parse(n.Rows(), resolve)
	if err != nil {
		return grid.Handle{}, fmt.Errorf("node %q: %w", name, err)
	}
	return b.grid.NewNodeFromTemplate(t)
}

func dimension(v *float64) float64 {
	if v == nil {
		return geo.Undefined
	}
	return *v
}
