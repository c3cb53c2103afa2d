// Package pipeline runs the document -> layout -> render pipeline shared by
// the CLI and the HTTP server.
//
// # Stages
//
//  1. Build: validate the document and create a grid of its leaves and nodes
//  2. Layout: compute the absolute rectangle of every leaf under the root
//  3. Render: produce the requested output formats from the scene
//
// Layouts are cheap and always recomputed. Rendered artifacts are cached per
// format, keyed by the document hash and the render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Formats: []string{"svg", "text"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Layout only:
//
//	sc, err := runner.Layout(ctx, doc, pipeline.Options{})
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridlay/pkg/cache"
	errs "github.com/matzehuels/gridlay/pkg/errors"
	"github.com/matzehuels/gridlay/pkg/layout"
	"github.com/matzehuels/gridlay/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultUnit is the SVG pixel size of one layout unit.
	DefaultUnit = 40.0

	// DefaultPadding is the SVG margin around the scene in pixels.
	DefaultPadding = 8.0

	// DefaultTextScale is the number of characters per layout unit in text output.
	DefaultTextScale = 1.0

	// DefaultPNGScale is the resolution multiplier for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatTree = "tree"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatTree: true,
}

// Extensions maps formats to output file extensions.
var Extensions = map[string]string{
	FormatText: ".txt",
	FormatSVG:  ".svg",
	FormatPNG:  ".png",
	FormatPDF:  ".pdf",
	FormatJSON: ".layout.json",
	FormatDOT:  ".dot",
	FormatTree: ".tree.svg",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// LeafSize overrides the size of a named leaf.
type LeafSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Root     string              `json:"root,omitempty"`  // lay out this name instead of the document root
	Sizes    map[string]LeafSize `json:"sizes,omitempty"` // leaf size overrides by name
	MaxDepth int                 `json:"max_depth,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Unit      float64  `json:"unit,omitempty"`
	Padding   float64  `json:"padding,omitempty"`
	TextScale float64  `json:"text_scale,omitempty"`
	PNGScale  float64  `json:"png_scale,omitempty"`
	NoLabels  bool     `json:"no_labels,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"` // sizes and templates in dot/tree output
	Refresh   bool     `json:"refresh,omitempty"`  // bypass cached artifacts

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Root is the name of the laid out node.
	Root string

	// DocumentHash identifies the document and layout options.
	DocumentHash string

	// Scene is the computed layout.
	Scene scene.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LeafCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks artifact cache hits.
type CacheInfo struct {
	RenderHit bool     // whether every artifact came from cache
	Hits      []string // formats served from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Unit < 0 || o.Padding < 0 || o.TextScale < 0 || o.PNGScale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "unit, padding and scales must not be negative")
	}
	o.validated = true
	return nil
}

// ValidateForLayout checks layout options and sets their defaults.
func (o *Options) ValidateForLayout() error {
	if o.MaxDepth == 0 {
		o.MaxDepth = layout.DefaultMaxDepth
	}
	if o.MaxDepth < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max_depth must be positive, got %d", o.MaxDepth)
	}
	for name, s := range o.Sizes {
		if s.Width < 0 || s.Height < 0 {
			return errs.New(errs.ErrCodeInvalidInput, "size override for %q is negative", name)
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Unit == 0 {
		o.Unit = DefaultUnit
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.TextScale == 0 {
		o.TextScale = DefaultTextScale
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Root: o.Root}
	switch format {
	case FormatText:
		k.TextScale = o.TextScale
	case FormatSVG, FormatPDF:
		k.Unit = o.Unit
	case FormatPNG:
		k.Unit = o.Unit
		k.PNGScale = o.PNGScale
	case FormatDOT, FormatTree:
		k.Detailed = o.Detailed
	}
	return k
}

// documentHash hashes the canonical document together with the layout
// options that change its geometry.
func documentHash(canonical []byte, o Options) string {
	extra := fmt.Sprintf("%v|%v|%v|%v", o.Padding, o.NoLabels, o.Root, sortedSizes(o.Sizes))
	return cache.Hash(append(slices.Clip(canonical), extra...))
}

func sortedSizes(m map[string]LeafSize) []string {
	out := make([]string, 0, len(m))
	for _, name := range sortedKeys(m) {
		out = append(out, fmt.Sprintf("%s=%gx%g", name, m[name].Width, m[name].Height))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
