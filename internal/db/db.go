package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	DocumentStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Document is one stored JSON object.
type Document struct {
	ID   string
	Data []byte
}

// DocumentStore keeps ordered collections of JSON documents.
type DocumentStore interface {
	// ReplaceAll swaps the whole collection for docs, keeping their order.
	ReplaceAll(ctx context.Context, collection string, docs []Document) error
	// List returns the collection in insertion order.
	List(ctx context.Context, collection string) ([]Document, error)
	Count(ctx context.Context, collection string) (int, error)
}
