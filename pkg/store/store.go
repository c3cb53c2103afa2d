// Package store keeps named layout documents for the HTTP server.
//
// Only documents are stored. Layouts are recomputed on every request and
// rendered artifacts live in pkg/cache.
//
// Two backends implement [Store]:
//
//   - [MemoryStore]: process-local, for tests and single-instance servers
//   - [MongoStore]: a MongoDB collection, one record per document name
package store

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/gridlay/pkg/document"
	errs "github.com/matzehuels/gridlay/pkg/errors"
)

// ErrNotFound is returned when no document has the requested name.
var ErrNotFound = errors.New("document not found")

// Record is a stored document with its metadata.
type Record struct {
	// Name is the unique key the document is stored under.
	Name string `json:"name" bson:"_id"`

	// ID is a uuid assigned when the name is first stored. It survives
	// updates and changes only if the document is deleted and re-created.
	ID string `json:"id" bson:"id"`

	Document  document.Document `json:"document" bson:"document"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// Store is a collection of named documents. Implementations are safe for
// concurrent use.
type Store interface {
	// Put creates or replaces the document stored under name.
	Put(ctx context.Context, name string, doc *document.Document) (Record, error)

	// Get returns the record stored under name.
	Get(ctx context.Context, name string) (Record, error)

	// List returns every record ordered by name.
	List(ctx context.Context) ([]Record, error)

	// Delete removes the record stored under name.
	Delete(ctx context.Context, name string) error

	// Close releases the backend.
	Close(ctx context.Context) error
}

func notFound(name string) error {
	return errs.Wrap(errs.ErrCodeNotFound, ErrNotFound, "document %q", name)
}

// checkPut validates the name and document before they are stored.
func checkPut(name string, doc *document.Document) error {
	if err := errs.ValidateDocumentName(name); err != nil {
		return err
	}
	if doc == nil {
		return errs.New(errs.ErrCodeInvalidInput, "document %q is nil", name)
	}
	return doc.Validate()
}
