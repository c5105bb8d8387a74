// Package bolt is a single-file db.Store backed by bbolt.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/shelfquery/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const bucketPrefix = "docs_"

// entry is the on-disk value. Keys are big-endian sequence numbers, so a
// cursor walk yields insertion order.
type entry struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Store keeps each collection in its own bucket.
type Store struct {
	db   *bbolt.DB
	path string
}

// NewStore opens (or creates) the database file at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	bdb, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt at %s: %w", path, err)
	}
	return &Store{db: bdb, path: path}, nil
}

// Ping verifies the file is still readable.
func (s *Store) Ping(_ context.Context) error {
	if err := s.db.View(func(*bbolt.Tx) error { return nil }); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady returns at once: an opened file is ready.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close releases the file lock.
func (s *Store) Close() {
	_ = s.db.Close()
}

// ReplaceAll drops and rebuilds the collection bucket in one transaction.
func (s *Store) ReplaceAll(_ context.Context, collection string, docs []db.Document) error {
	if err := db.ValidateCollection(collection); err != nil {
		return err
	}
	name := []byte(bucketPrefix + collection)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("drop bucket: %w", err)
		}
		bucket, err := tx.CreateBucket(name)
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		for i, d := range docs {
			if d.ID == "" {
				return fmt.Errorf("document %d: id is required", i)
			}
			seq, err := bucket.NextSequence()
			if err != nil {
				return err
			}
			val, err := json.Marshal(entry{ID: d.ID, Data: json.RawMessage(d.Data)})
			if err != nil {
				return fmt.Errorf("document %s: %w", d.ID, err)
			}
			if err := bucket.Put(seqKey(seq), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpBoltPut, Err: fmt.Errorf("replace %s: %w", collection, err)}
	}
	return nil
}

// List walks the bucket in key order. A missing bucket is an empty collection.
func (s *Store) List(_ context.Context, collection string) ([]db.Document, error) {
	if err := db.ValidateCollection(collection); err != nil {
		return nil, err
	}

	docs := []db.Document{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketPrefix + collection))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("key %d: %w", binary.BigEndian.Uint64(k), err)
			}
			// bbolt memory is only valid inside the transaction.
			docs = append(docs, db.Document{ID: e.ID, Data: append([]byte(nil), e.Data...)})
			return nil
		})
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpBoltView, Err: err}
	}
	return docs, nil
}

// Count returns the number of keys in the collection bucket.
func (s *Store) Count(_ context.Context, collection string) (int, error) {
	if err := db.ValidateCollection(collection); err != nil {
		return 0, err
	}

	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		if bucket := tx.Bucket([]byte(bucketPrefix + collection)); bucket != nil {
			n = bucket.Stats().KeyN
		}
		return nil
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpBoltView, Err: err}
	}
	return n, nil
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
