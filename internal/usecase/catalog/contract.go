package catalog

import (
	"context"

	"github.com/kailas-cloud/shelfquery/internal/domain/record"
)

// Repository supplies a point-in-time view of one stored collection.
type Repository interface {
	Snapshot(ctx context.Context) ([]record.Record, error)
}

// sourceFunc adapts a loader into a query.Source.
type sourceFunc func(ctx context.Context) ([]record.Record, error)

func (f sourceFunc) Snapshot(ctx context.Context) ([]record.Record, error) { return f(ctx) }
