package record

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/shelfquery/internal/db"
	"github.com/kailas-cloud/shelfquery/internal/db/memory"
	domrec "github.com/kailas-cloud/shelfquery/internal/domain/record"
	"github.com/kailas-cloud/shelfquery/internal/usecase/query"
)

// Compile-time check: Repo is a query source.
var _ query.Source[domrec.Record] = (*Repo)(nil)

// --- Snapshot ---

func TestSnapshot(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.listFn = func(_ context.Context, collection string) ([]db.Document, error) {
		if collection != "books" {
			t.Errorf("unexpected collection: %s", collection)
		}
		return []db.Document{
			{ID: "2", Data: []byte(`{"id":2,"title":"Dune","author":{"name":"Herbert"}}`)},
			{ID: "1", Data: []byte(`{"id":1,"title":"Emma"}`)},
		}, nil
	}

	recs, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if got := recs[0].Resolve("author.name").Text(); got != "Herbert" {
		t.Errorf("author.name = %q", got)
	}
	if n, _ := recs[1].Resolve("id").AsNumber(); n != 1 {
		t.Errorf("id = %v", n)
	}
}

func TestSnapshot_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.listFn = func(_ context.Context, _ string) ([]db.Document, error) {
		return nil, db.ErrInvalidCollection
	}

	if _, err := repo.Snapshot(context.Background()); !errors.Is(err, db.ErrInvalidCollection) {
		t.Errorf("err = %v", err)
	}
}

func TestSnapshot_CorruptDocument(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.listFn = func(_ context.Context, _ string) ([]db.Document, error) {
		return []db.Document{{ID: "7", Data: []byte(`[1,2]`)}}, nil
	}

	if _, err := repo.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- Seed ---

func TestSeed(t *testing.T) {
	repo, ms := newTestRepo(t)
	var got []db.Document
	ms.replaceAllFn = func(_ context.Context, _ string, docs []db.Document) error {
		got = docs
		return nil
	}

	err := repo.Seed(context.Background(), []domrec.Record{
		{"id": domrec.Int(3), "title": domrec.Str("Dune")},
		{"id": domrec.Str("b-9")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "b-9" {
		t.Fatalf("docs = %+v", got)
	}
	if string(got[0].Data) != `{"id":3,"title":"Dune"}` {
		t.Errorf("data = %s", got[0].Data)
	}
}

func TestSeed_MissingID(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.replaceAllFn = func(_ context.Context, _ string, _ []db.Document) error {
		t.Error("ReplaceAll should not be called")
		return nil
	}

	if err := repo.Seed(context.Background(), []domrec.Record{{"title": domrec.Str("x")}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSeed_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.replaceAllFn = func(_ context.Context, _ string, _ []db.Document) error {
		return errors.New("boom")
	}

	if err := repo.Seed(context.Background(), []domrec.Record{{"id": domrec.Int(1)}}); err == nil {
		t.Fatal("expected error")
	}
}

// --- Count ---

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.countFn = func(_ context.Context, _ string) (int, error) { return 4, nil }

	n, err := repo.Count(context.Background())
	if err != nil || n != 4 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

// --- round trip through a real store ---

func TestSeedThenSnapshot_MemoryStore(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.NewStore(), "authors")

	in := []domrec.Record{
		{"id": domrec.Int(2), "name": domrec.Str("George Orwell"), "alive": domrec.Boolean(false)},
		{"id": domrec.Int(1), "name": domrec.Str("J.K. Rowling"), "nick": domrec.NullValue()},
	}
	if err := repo.Seed(ctx, in); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	out, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].Resolve("name").Text() != "George Orwell" {
		t.Errorf("order not preserved: %v", out[0].Resolve("name").Text())
	}
	if out[1].Resolve("nick").Kind() != domrec.Null {
		t.Errorf("nick kind = %d, want Null", out[1].Resolve("nick").Kind())
	}
	if n, _ := repo.Count(ctx); n != 2 {
		t.Errorf("Count() = %d", n)
	}
}
