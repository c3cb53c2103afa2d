// Package cache stores rendered artifacts between runs.
//
// Layouts themselves are never cached: every request recomputes its layout
// from the document. What is kept are the expensive outputs derived from a
// layout (SVG, PNG, PDF and friends), keyed by the document hash and the
// render options.
//
// # Backends
//
//   - [NullCache]: stores nothing, for --no-cache and tests
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//
// # Keys
//
// A [Keyer] turns a document hash plus options into a key. Wrap it in a
// [ScopedKeyer] to give several tenants separate namespaces:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "team-a:")
//	key := keyer.ArtifactKey(docHash, cache.ArtifactKeyOpts{Format: "svg"})
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
