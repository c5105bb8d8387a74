package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/shelfquery/internal/domain"
	domcat "github.com/kailas-cloud/shelfquery/internal/domain/catalog"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/filter"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/order"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/paging"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/request"
	"github.com/kailas-cloud/shelfquery/internal/domain/record"
	"github.com/kailas-cloud/shelfquery/internal/usecase/query"
)

// SearchResult is one page of mixed author and book hits.
type SearchResult struct {
	// Term is the search parameter as received.
	Term string
	Page Page
}

// Search runs a free-text search across authors and books. Every hit carries
// "type" and "relevance". A "type" filter selects one kind exactly; other
// filters apply to the hit records. Without sortBy, hits rank by relevance.
func (s *Service) Search(ctx context.Context, params url.Values) (SearchResult, error) {
	start := time.Now()
	res, err := s.runSearch(ctx, params)
	s.observe(ctx, searchLabel, start, res.Page.Total(), err)
	return res, err
}

func (s *Service) runSearch(ctx context.Context, params url.Values) (SearchResult, error) {
	if _, ok := params[request.KeySortBy]; !ok {
		params = cloneWith(params, request.KeySortBy, request.RelevanceField)
	}
	req, err := request.Parse(params, domcat.GlobalSortFields)
	if err != nil {
		return SearchResult{}, fmt.Errorf("parse search query: %w", err)
	}

	term := strings.TrimSpace(req.Search())
	if utf8.RuneCountInString(term) < s.minSearchLen {
		return SearchResult{}, domain.NewValidationError(domain.ErrInvalidSearch,
			"search query must be at least %d characters long", s.minSearchLen)
	}

	authors, err := s.snapshot(ctx, s.authors, domcat.Authors)
	if err != nil {
		return SearchResult{}, err
	}
	books, err := s.joinedBooks(ctx, false)
	if err != nil {
		return SearchResult{}, err
	}

	// Matching ignores the caller's filters and sort; those apply to the
	// merged hits below.
	match, err := request.New(request.DefaultPage, request.MaxLimit,
		request.RelevanceField, order.Desc, term, filter.Set{}, nil)
	if err != nil {
		return SearchResult{}, fmt.Errorf("build match request: %w", err)
	}

	hits := make([]query.Hit[record.Record], 0)
	for _, h := range s.authorEngine.Apply(authors, &match) {
		hits = append(hits, tagHit(h, domcat.TypeAuthor))
	}
	for _, h := range s.bookEngine.Apply(books, &match) {
		h.Item = h.Item.Without("authorId")
		hits = append(hits, tagHit(h, domcat.TypeBook))
	}

	typeClause, hasType := req.Filters().Get("type")
	rest := req.Filters().Without("type")
	kept := hits[:0]
	for _, h := range hits {
		if hasType && !h.Item.Resolve("type").Equal(typeClause.Expected()) {
			continue
		}
		if !rest.Match(h.Item.Resolve) {
			continue
		}
		kept = append(kept, h)
	}

	res := s.globalEngine.Finalize(kept, &req)
	return SearchResult{
		Term: req.Search(),
		Page: paging.Map(res, func(h query.Hit[record.Record]) record.Record { return h.Item }),
	}, nil
}

func tagHit(h query.Hit[record.Record], kind string) query.Hit[record.Record] {
	h.Item = h.Item.
		With("type", record.Str(kind)).
		With("relevance", record.Int(int64(h.Score)))
	return h
}

func cloneWith(params url.Values, key, value string) url.Values {
	out := make(url.Values, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out.Set(key, value)
	return out
}
