package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gridlay/pkg/document"
	errs "github.com/matzehuels/gridlay/pkg/errors"
)

// MemoryStore keeps records in a map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, name string, doc *document.Document) (Record, error) {
	if err := checkPut(name, doc); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec, ok := s.records[name]
	if !ok {
		rec = Record{Name: name, ID: uuid.NewString(), CreatedAt: now}
	}
	rec.Document = clone(doc)
	rec.UpdatedAt = now
	s.records[name] = rec
	return rec, nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (Record, error) {
	if err := errs.ValidateDocumentName(name); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[name]
	if !ok {
		return Record{}, notFound(name)
	}
	return rec, nil
}

func (s *MemoryStore) List(context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := slices.Collect(maps.Values(s.records))
	slices.SortFunc(recs, func(a, b Record) int { return cmp.Compare(a.Name, b.Name) })
	return recs, nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	if err := errs.ValidateDocumentName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[name]; !ok {
		return notFound(name)
	}
	delete(s.records, name)
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// clone copies the maps so later edits by the caller don't leak into the store.
func clone(d *document.Document) document.Document {
	return document.Document{
		Root:   d.Root,
		Leaves: maps.Clone(d.Leaves),
		Nodes:  maps.Clone(d.Nodes),
	}
}

var _ Store = (*MemoryStore)(nil)
