// Package memory is a process-local db.Store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/shelfquery/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store keeps collections in memory. Reads return copies, so a List result
// is a stable snapshot regardless of later writes.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]db.Document
}

// NewStore creates an empty memory store.
func NewStore() *Store {
	return &Store{collections: make(map[string][]db.Document)}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// Close drops all collections.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = make(map[string][]db.Document)
}

// ReplaceAll swaps the collection contents.
func (s *Store) ReplaceAll(_ context.Context, collection string, docs []db.Document) error {
	if err := db.ValidateCollection(collection); err != nil {
		return err
	}
	cp := make([]db.Document, len(docs))
	for i, d := range docs {
		cp[i] = db.Document{ID: d.ID, Data: append([]byte(nil), d.Data...)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = cp
	return nil
}

// List returns a copy of the collection in insertion order.
func (s *Store) List(_ context.Context, collection string) ([]db.Document, error) {
	if err := db.ValidateCollection(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.collections[collection]
	out := make([]db.Document, len(docs))
	copy(out, docs)
	return out, nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(_ context.Context, collection string) (int, error) {
	if err := db.ValidateCollection(collection); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection]), nil
}
