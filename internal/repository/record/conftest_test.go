package record

import (
	"context"
	"testing"

	"github.com/kailas-cloud/shelfquery/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	replaceAllFn func(ctx context.Context, collection string, docs []db.Document) error
	listFn       func(ctx context.Context, collection string) ([]db.Document, error)
	countFn      func(ctx context.Context, collection string) (int, error)
}

func (m *mockStore) ReplaceAll(ctx context.Context, collection string, docs []db.Document) error {
	if m.replaceAllFn != nil {
		return m.replaceAllFn(ctx, collection, docs)
	}
	return nil
}

func (m *mockStore) List(ctx context.Context, collection string) ([]db.Document, error) {
	if m.listFn != nil {
		return m.listFn(ctx, collection)
	}
	return []db.Document{}, nil
}

func (m *mockStore) Count(ctx context.Context, collection string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, collection)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "books"), ms
}
