// Package pkg provides the libraries behind gridlay, a layout engine for
// trees of boxes arranged by textual grid templates.
//
// # Overview
//
// A layout is a tree. Leaves are boxes with a width and a height. Parents
// split their area among children with a template such as
//
//	a a
//	b c
//	b c
//
// where every label must cover a rectangle of cells. The engine computes
// each leaf's position relative to the root. The pkg directory is organized
// into three areas:
//
//  1. Core - [geo], [template], [forest], [layout] and [grid]
//  2. Documents and output - [document], [scene] and [render]
//  3. Infrastructure - [pipeline], [cache], [store], [server] and
//     [observability]
//
// # Architecture
//
// The typical data flow:
//
//	TOML/YAML/JSON document
//	         ↓
//	    [document] package (parse, validate, build a grid)
//	         ↓
//	    [grid] package (handles, names, layout entry point)
//	         ↓
//	    [layout] package (size propagation and composition)
//	         ↓
//	    [scene] package (named absolute boxes)
//	         ↓
//	    [render] packages (text, SVG, PNG, PDF, JSON, DOT)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/gridlay/pkg/grid"
//	    "github.com/matzehuels/gridlay/pkg/scene"
//	    "github.com/matzehuels/gridlay/pkg/render/sink"
//	)
//
//	g := grid.New(nil)
//	a := g.NewLeaf(2, 1)
//	b := g.NewLeaf(1, 2)
//	c := g.NewLeaf(1, 2)
//	root, _ := g.NewNode(func(l *grid.Lines) error {
//	    return l.Rows([]grid.Handle{a, a}, []grid.Handle{b, c}, []grid.Handle{b, c})
//	})
//	s, _ := scene.FromGrid(g, root)
//	text, _ := sink.RenderText(s)
//	fmt.Print(string(text))
//
// For documents on disk, [pipeline.Runner] does the whole job with caching:
//
//	doc, _ := document.Load("page.toml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(ctx, doc, pipeline.Options{Formats: []string{"svg"}})
//
// # Errors
//
// Every package reports failures as [errors.Error] values carrying a code
// such as INVALID_SHAPE or UNDEFINED_LEAF_SIZE. Use errors.Is with a code
// to branch on them.
//
// [geo]: github.com/matzehuels/gridlay/pkg/geo
// [template]: github.com/matzehuels/gridlay/pkg/template
// [forest]: github.com/matzehuels/gridlay/pkg/forest
// [layout]: github.com/matzehuels/gridlay/pkg/layout
// [grid]: github.com/matzehuels/gridlay/pkg/grid
// [document]: github.com/matzehuels/gridlay/pkg/document
// [scene]: github.com/matzehuels/gridlay/pkg/scene
// [render]: github.com/matzehuels/gridlay/pkg/render
// [pipeline]: github.com/matzehuels/gridlay/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/gridlay/pkg/pipeline.Runner
// [cache]: github.com/matzehuels/gridlay/pkg/cache
// [store]: github.com/matzehuels/gridlay/pkg/store
// [server]: github.com/matzehuels/gridlay/pkg/server
// [observability]: github.com/matzehuels/gridlay/pkg/observability
// [errors]: github.com/matzehuels/gridlay/pkg/errors
// [errors.Error]: github.com/matzehuels/gridlay/pkg/errors.Error
package pkg
