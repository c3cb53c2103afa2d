package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/gridlay/pkg/document"
	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/grid"
	"github.com/matzehuels/gridlay/pkg/layout"
	"github.com/matzehuels/gridlay/pkg/observability"
	"github.com/matzehuels/gridlay/pkg/scene"
)

// Built is a document turned into a grid, ready to lay out or render.
type Built struct {
	Grid     *grid.Grid
	Root     grid.Handle
	RootName string
}

// Build creates the grid for doc, applies size overrides and resolves the
// root. Only names reachable from the layout root are built; overrides for
// other defined leaves are ignored. The grid draws local ids from alloc,
// which may be nil.
func Build(doc *document.Document, alloc *grid.Allocator, opts Options) (*Built, error) {
	if opts.Root != "" && !doc.Has(opts.Root) {
		return nil, errs.New(errs.ErrCodeNodeNotFound, "root %q is not defined", opts.Root)
	}
	var extra []string
	if opts.Root != "" {
		extra = append(extra, opts.Root)
	}
	g, root, err := doc.Build(alloc, extra...)
	if err != nil {
		return nil, err
	}

	rootName := g.Label(root)
	if opts.Root != "" {
		root, _ = g.Lookup(opts.Root)
		rootName = opts.Root
	}

	for _, name := range sortedKeys(opts.Sizes) {
		h, ok := g.Lookup(name)
		if !ok {
			if doc.Has(name) {
				continue
			}
			return nil, errs.New(errs.ErrCodeNodeNotFound, "size override for unknown leaf %q", name)
		}
		s := opts.Sizes[name]
		if err := g.SetLeafSize(h, s.Width, s.Height); err != nil {
			return nil, fmt.Errorf("size override for %q: %w", name, err)
		}
	}

	return &Built{Grid: g, Root: root, RootName: rootName}, nil
}

// Release returns the grid's local ids to its allocator. b must not be used
// afterwards.
func (b *Built) Release() { b.Grid.Clear() }

// ComputeScene lays out b and names every box.
func ComputeScene(ctx context.Context, b *Built, opts Options) (sc scene.Scene, err error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLayoutStart(ctx, b.RootName, b.Grid.Len())
	defer func() {
		hooks.OnLayoutComplete(ctx, b.RootName, len(sc.Boxes), time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return scene.Scene{}, err
	}

	var lopts []layout.Option
	if opts.MaxDepth > 0 {
		lopts = append(lopts, layout.WithMaxDepth(opts.MaxDepth))
	}
	l, err := b.Grid.ComputeLayout(b.Root, lopts...)
	if err != nil {
		return scene.Scene{}, err
	}
	return scene.FromLayout(l, b.Grid.Label), nil
}
