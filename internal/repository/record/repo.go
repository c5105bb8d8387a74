package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/shelfquery/internal/db"
	domrec "github.com/kailas-cloud/shelfquery/internal/domain/record"
)

// store is the consumer interface for record collections (ISP).
type store interface {
	ReplaceAll(ctx context.Context, collection string, docs []db.Document) error
	List(ctx context.Context, collection string) ([]db.Document, error)
	Count(ctx context.Context, collection string) (int, error)
}

// Repo exposes one stored collection as records. It implements
// usecase/query.Source[record.Record].
type Repo struct {
	store      store
	collection string
}

// New creates a repository over collection.
func New(s store, collection string) *Repo {
	return &Repo{store: s, collection: collection}
}

// Collection returns the backing collection name.
func (r *Repo) Collection() string { return r.collection }

// Snapshot loads the whole collection in stored order.
func (r *Repo) Snapshot(ctx context.Context) ([]domrec.Record, error) {
	docs, err := r.store.List(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.collection, err)
	}

	out := make([]domrec.Record, 0, len(docs))
	for _, d := range docs {
		rec, err := domrec.FromJSON(d.Data)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", r.collection, d.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of stored records.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.Count(ctx, r.collection)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.collection, err)
	}
	return n, nil
}

// Seed replaces the collection with recs. Each record needs an "id" field.
func (r *Repo) Seed(ctx context.Context, recs []domrec.Record) error {
	docs := make([]db.Document, len(recs))
	for i, rec := range recs {
		id := rec.Resolve("id")
		if id.IsMissing() {
			return fmt.Errorf("seed %s: record %d has no id", r.collection, i)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("seed %s: marshal record %d: %w", r.collection, i, err)
		}
		docs[i] = db.Document{ID: id.Text(), Data: data}
	}

	if err := r.store.ReplaceAll(ctx, r.collection, docs); err != nil {
		return fmt.Errorf("seed %s: %w", r.collection, err)
	}
	return nil
}
