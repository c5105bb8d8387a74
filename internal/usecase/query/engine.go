package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/shelfquery/internal/domain/query/order"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/paging"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/relevance"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/request"
	"github.com/kailas-cloud/shelfquery/internal/domain/record"
)

// Hit is an item that survived filtering, with its relevance score when the
// query ranks by relevance.
type Hit[T any] struct {
	Item   T
	Score  int
	Scored bool
}

// Engine filters, ranks, sorts and paginates in-memory collections.
// It holds only configuration and is safe for concurrent use.
type Engine[T any] struct {
	access       Accessor[T]
	searchFields []string
	score        Scorer[T]
}

// NewEngine creates an engine that reads item fields through access.
func NewEngine[T any](access Accessor[T]) *Engine[T] {
	return &Engine[T]{access: access}
}

// WithSearchFields sets the fields matched by free-text search.
func (e *Engine[T]) WithSearchFields(fields ...string) *Engine[T] {
	e.searchFields = append([]string(nil), fields...)
	return e
}

// WithScorer overrides the default relevance scorer.
func (e *Engine[T]) WithScorer(s Scorer[T]) *Engine[T] {
	e.score = s
	return e
}

// SearchFields returns the configured searchable fields.
func (e *Engine[T]) SearchFields() []string { return e.searchFields }

// Query snapshots src and runs the full pipeline over it.
func (e *Engine[T]) Query(
	ctx context.Context, src Source[T], req *request.Request,
) (paging.Result[Hit[T]], error) {
	items, err := src.Snapshot(ctx)
	if err != nil {
		return paging.Result[Hit[T]]{}, fmt.Errorf("snapshot: %w", err)
	}
	return e.Finalize(e.Apply(items, req), req), nil
}

// Run executes filter -> sort -> paginate and returns the page items.
func (e *Engine[T]) Run(items []T, req *request.Request) paging.Result[T] {
	return paging.Map(e.Finalize(e.Apply(items, req), req), func(h Hit[T]) T { return h.Item })
}

// Apply keeps the items that match the free-text search and every field
// filter, in input order. Items are scored when the request ranks by
// relevance and a search term is present.
func (e *Engine[T]) Apply(items []T, req *request.Request) []Hit[T] {
	term := strings.ToLower(req.Search())
	searching := term != "" && len(e.searchFields) > 0
	scoring := req.HasSearch() && req.ByRelevance()
	filters := req.Filters()

	out := make([]Hit[T], 0, len(items))
	for _, it := range items {
		if searching && !e.matchesSearch(it, term) {
			continue
		}
		if !filters.Match(func(path string) record.Value { return e.access(it, path) }) {
			continue
		}
		h := Hit[T]{Item: it}
		if scoring {
			h.Score = e.scoreItem(req.Search(), it)
			h.Scored = true
		}
		out = append(out, h)
	}
	return out
}

// Finalize orders hits and cuts the requested page. Field sorts are stable and
// put missing values last in both directions; relevance sorts are stable and
// descending by score. hits is not modified.
func (e *Engine[T]) Finalize(hits []Hit[T], req *request.Request) paging.Result[Hit[T]] {
	sorted := make([]Hit[T], len(hits))
	copy(sorted, hits)

	if req.ByRelevance() {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Score > sorted[j].Score
		})
	} else {
		e.sortByField(sorted, req.SortBy(), req.SortOrder())
	}

	return paging.Paginate(sorted, req.Page(), req.Limit())
}

func (e *Engine[T]) sortByField(hits []Hit[T], field string, o order.Order) {
	keys := make([]record.Value, len(hits))
	for i, h := range hits {
		keys[i] = e.access(h.Item, field)
	}
	idx := make([]int, len(hits))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		switch {
		case ka.IsMissing() && kb.IsMissing():
			return false
		case ka.IsMissing():
			return false
		case kb.IsMissing():
			return true
		}
		c := record.Compare(ka, kb)
		if o == order.Desc {
			return c > 0
		}
		return c < 0
	})

	reordered := make([]Hit[T], len(hits))
	for i, j := range idx {
		reordered[i] = hits[j]
	}
	copy(hits, reordered)
}

func (e *Engine[T]) matchesSearch(it T, term string) bool {
	for _, f := range e.searchFields {
		v := e.access(it, f)
		if v.Truthy() && strings.Contains(strings.ToLower(v.Text()), term) {
			return true
		}
	}
	return false
}

func (e *Engine[T]) scoreItem(term string, it T) int {
	if e.score != nil {
		return e.score(term, it)
	}
	fields := make([]string, 0, len(e.searchFields))
	for _, f := range e.searchFields {
		if v := e.access(it, f); v.Truthy() {
			fields = append(fields, v.Text())
		}
	}
	return relevance.Score(term, fields...)
}
