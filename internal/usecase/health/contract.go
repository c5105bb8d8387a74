package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CollectionCounter reports the size of one stored collection.
type CollectionCounter interface {
	Collection() string
	Count(ctx context.Context) (int, error)
}
