package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/shelfquery/internal/db"
)

// maxListAttempts bounds how often List re-reads a collection that keeps
// being replaced underneath it.
const maxListAttempts = 5

// ReplaceAll drops the current collection and writes docs in one MULTI/EXEC.
// The collection version is bumped in the same transaction.
func (s *Store) ReplaceAll(ctx context.Context, collection string, docs []db.Document) error {
	if err := db.ValidateCollection(collection); err != nil {
		return err
	}

	oldIDs, err := s.ids(ctx, collection)
	if err != nil {
		return err
	}

	staleKeys := make([]string, 0, len(oldIDs)+1)
	staleKeys = append(staleKeys, s.idsKey(collection))
	for _, id := range oldIDs {
		staleKeys = append(staleKeys, s.docKey(collection, id))
	}

	// ops[i] names cmds[i] so a failure can be reported against its command.
	cmds := make([]rueidis.Completed, 0, len(docs)+5)
	ops := make([]string, 0, len(docs)+5)
	add := func(op string, cmd rueidis.Completed) {
		cmds = append(cmds, cmd)
		ops = append(ops, op)
	}

	add(db.OpMulti, s.b().Multi().Build())
	add(db.OpDel, s.b().Del().Key(staleKeys...).Build())

	newIDs := make([]string, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document %d: id is required", i)
		}
		newIDs[i] = d.ID
		add(db.OpJSONSet, s.b().Arbitrary("JSON.SET").
			Keys(s.docKey(collection, d.ID)).Args("$", string(d.Data)).Build())
	}
	if len(newIDs) > 0 {
		add(db.OpRPush, s.b().Rpush().Key(s.idsKey(collection)).Element(newIDs...).Build())
	}
	add(db.OpIncr, s.b().Incr().Key(s.verKey(collection)).Build())
	add(db.OpExec, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return replaceError(ops[i], collection, err)
		}
	}
	if len(results) != len(cmds) {
		return replaceError(db.OpExec, collection,
			fmt.Errorf("got %d replies for %d commands", len(results), len(cmds)))
	}

	// EXEC succeeds even when a queued command fails at run time; those
	// errors only show up inside its reply.
	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		return replaceError(db.OpExec, collection, err)
	}
	queued := ops[1 : len(ops)-1]
	for i := range replies {
		if err := replies[i].Error(); err != nil {
			op := db.OpExec
			if i < len(queued) {
				op = queued[i]
			}
			return replaceError(op, collection, err)
		}
	}
	return nil
}

func replaceError(op, collection string, err error) error {
	return &db.Error{Op: op, Err: fmt.Errorf("replace %s: %w", collection, err)}
}

// List returns the documents in id-list order as of a single ReplaceAll
// generation. The version key is read before the ids and again after the
// documents; if it moved, the read is retried.
func (s *Store) List(ctx context.Context, collection string) ([]db.Document, error) {
	if err := db.ValidateCollection(collection); err != nil {
		return nil, err
	}

	for range maxListAttempts {
		docs, ok, err := s.listOnce(ctx, collection)
		if err != nil {
			return nil, err
		}
		if ok {
			return docs, nil
		}
	}
	return nil, &db.Error{Op: db.OpGet, Err: fmt.Errorf("list %s: %w", collection, db.ErrSnapshotConflict)}
}

// listOnce reports ok=false when the collection was replaced mid-read.
func (s *Store) listOnce(ctx context.Context, collection string) ([]db.Document, bool, error) {
	head := s.client.DoMulti(ctx,
		s.b().Get().Key(s.verKey(collection)).Build(),
		s.b().Lrange().Key(s.idsKey(collection)).Start(0).Stop(-1).Build(),
	)
	before, err := version(head[0])
	if err != nil {
		return nil, false, err
	}
	ids, err := idList(head[1])
	if err != nil {
		return nil, false, err
	}
	if len(ids) == 0 {
		return []db.Document{}, true, nil
	}

	cmds := make([]rueidis.Completed, 0, len(ids)+1)
	for _, id := range ids {
		cmds = append(cmds, s.b().Arbitrary("JSON.GET").Keys(s.docKey(collection, id)).Build())
	}
	cmds = append(cmds, s.b().Get().Key(s.verKey(collection)).Build())
	res := s.client.DoMulti(ctx, cmds...)

	docs := make([]db.Document, 0, len(ids))
	for i, id := range ids {
		raw, err := res[i].ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, false, &db.Error{Op: db.OpJSONGet, Err: fmt.Errorf("key %s: %w", id, err)}
		}
		docs = append(docs, db.Document{ID: id, Data: []byte(raw)})
	}

	after, err := version(res[len(ids)])
	if err != nil {
		return nil, false, err
	}
	if after != before {
		return nil, false, nil
	}
	return docs, true, nil
}

// Count returns the length of the collection's id list.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	if err := db.ValidateCollection(collection); err != nil {
		return 0, err
	}

	n, err := s.do(ctx, s.b().Llen().Key(s.idsKey(collection)).Build()).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpLLen, Err: err}
	}
	return int(n), nil
}

func (s *Store) ids(ctx context.Context, collection string) ([]string, error) {
	return idList(s.do(ctx, s.b().Lrange().Key(s.idsKey(collection)).Start(0).Stop(-1).Build()))
}

func idList(res rueidis.RedisResult) ([]string, error) {
	ids, err := res.AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return ids, nil
}

// version returns "" for a collection that was never replaced.
func version(res rueidis.RedisResult) (string, error) {
	v, err := res.ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", nil
		}
		return "", &db.Error{Op: db.OpGet, Err: err}
	}
	return v, nil
}
