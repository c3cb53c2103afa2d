package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/gridlay/pkg/cache"
	"github.com/matzehuels/gridlay/pkg/document"
	"github.com/matzehuels/gridlay/pkg/grid"
	"github.com/matzehuels/gridlay/pkg/observability"
	"github.com/matzehuels/gridlay/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner holds no per-run state: every call builds its own grid, so
// multiple goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Allocator, when set, is shared by every grid the runner builds.
	Allocator *grid.Allocator

	flight singleflight.Group
}

// maxConcurrentRenders bounds the formats rendered at once per call.
const maxConcurrentRenders = 4

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build -> layout -> render pipeline.
func (r *Runner) Execute(ctx context.Context, doc *document.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	canonical, err := doc.Canonical()
	if err != nil {
		return nil, fmt.Errorf("hash document: %w", err)
	}

	// Stage 1+2: Build and layout
	layoutStart := time.Now()
	b, err := r.build(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	defer b.Release()
	sc, err := ComputeScene(ctx, b, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result := &Result{
		Root:         b.RootName,
		DocumentHash: documentHash(canonical, opts),
		Scene:        sc,
	}
	result.Stats.NodeCount = b.Grid.Len()
	result.Stats.LeafCount = len(sc.Boxes)
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("computed layout",
		"root", b.RootName,
		"size", sc.Size(),
		"leaves", len(sc.Boxes),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hits, err := r.RenderWithCacheInfo(ctx, sc, b, result.DocumentHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.Hits = hits
	result.CacheInfo.RenderHit = len(hits) == len(opts.Formats)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", len(hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout builds doc and returns its scene without rendering anything.
func (r *Runner) Layout(ctx context.Context, doc *document.Document, opts Options) (scene.Scene, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return scene.Scene{}, fmt.Errorf("invalid options: %w", err)
	}
	b, err := r.build(doc, opts)
	if err != nil {
		return scene.Scene{}, fmt.Errorf("build: %w", err)
	}
	defer b.Release()
	sc, err := ComputeScene(ctx, b, opts)
	if err != nil {
		return scene.Scene{}, fmt.Errorf("layout: %w", err)
	}
	return sc, nil
}

// RenderWithCacheInfo renders every requested format, serving what it can
// from the cache, and returns the formats that were cache hits.
//
// Formats render concurrently. Concurrent calls that miss on the same
// artifact key share one render.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, sc scene.Scene, b *Built, docHash string, opts Options) (map[string][]byte, []string, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)

	results := make([][]byte, len(opts.Formats))
	hit := make([]bool, len(opts.Formats))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRenders)
	for i, format := range opts.Formats {
		g.Go(func() error {
			data, cached, err := r.renderCached(gctx, sc, b, docHash, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			results[i], hit[i] = data, cached
			return nil
		})
	}
	err := g.Wait()
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var hits []string
	for i, format := range opts.Formats {
		artifacts[format] = results[i]
		if hit[i] {
			hits = append(hits, format)
		}
	}
	return artifacts, hits, nil
}

// renderCached returns one artifact from the cache or renders and stores it.
func (r *Runner) renderCached(ctx context.Context, sc scene.Scene, b *Built, docHash, format string, opts Options) ([]byte, bool, error) {
	cacheHooks := observability.Cache()
	keyType := "artifact:" + format
	key := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "err", err)
		} else if hit {
			cacheHooks.OnCacheHit(ctx, keyType)
			return data, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, keyType)
	}

	// The shared render outlives any one caller's cancellation, and b with
	// it, so it gets the DOT text instead of the grid. Each caller stops
	// waiting when its own ctx is done.
	dot, err := treeDOT(b, format, opts)
	if err != nil {
		return nil, false, err
	}
	renderCtx := context.WithoutCancel(ctx)
	ch := r.flight.DoChan(key, func() (any, error) {
		data, err := renderFormat(renderCtx, sc, dot, format, opts)
		if err != nil {
			return nil, err
		}
		if err := r.Cache.Set(renderCtx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
		} else {
			cacheHooks.OnCacheSet(renderCtx, keyType, len(data))
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		if res.Shared {
			r.Logger.Debug("shared render", "format", format)
		}
		return res.Val.([]byte), false, nil
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) build(doc *document.Document, opts Options) (*Built, error) {
	b, err := Build(doc, r.Allocator, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("built grid", "root", b.RootName, "nodes", b.Grid.Len())
	return b, nil
}
