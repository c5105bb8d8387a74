package query

import (
	"context"

	"github.com/kailas-cloud/shelfquery/internal/domain/record"
)

// Source supplies a point-in-time view of a collection. Implementations must
// return a slice the caller may keep and that stays stable for the whole query.
type Source[T any] interface {
	Snapshot(ctx context.Context) ([]T, error)
}

// Accessor resolves a dotted field path on an item. Unknown paths yield an
// Absent value.
type Accessor[T any] func(item T, path string) record.Value

// Scorer computes the relevance of an item for a search term.
type Scorer[T any] func(term string, item T) int
