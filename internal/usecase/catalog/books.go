package catalog

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/kailas-cloud/shelfquery/internal/domain"
	domcat "github.com/kailas-cloud/shelfquery/internal/domain/catalog"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/filter"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/request"
	"github.com/kailas-cloud/shelfquery/internal/domain/record"
)

// ListBooks queries books joined with a short author reference.
func (s *Service) ListBooks(ctx context.Context, params url.Values) (Page, error) {
	return s.queryBooks(ctx, params, nil)
}

// SearchBooks is ListBooks with the short filter names "author" and "year".
func (s *Service) SearchBooks(ctx context.Context, params url.Values) (Page, error) {
	return s.queryBooks(ctx, params, domcat.BookFilterAliases)
}

func (s *Service) queryBooks(ctx context.Context, params url.Values, aliases map[string]string) (Page, error) {
	start := time.Now()
	page, err := s.runBookQuery(ctx, params, aliases)
	s.observe(ctx, domcat.Books, start, page.Total(), err)
	return page, err
}

func (s *Service) runBookQuery(ctx context.Context, params url.Values, aliases map[string]string) (Page, error) {
	req, err := request.Parse(params, domcat.BookSortFields)
	if err != nil {
		return Page{}, fmt.Errorf("parse book query: %w", err)
	}
	if len(aliases) > 0 {
		filters, err := aliasFilters(req.Filters(), aliases)
		if err != nil {
			return Page{}, domain.NewValidationError(domain.ErrInvalidFilter, "%s", err.Error())
		}
		req = req.WithFilters(filters)
	}

	src := sourceFunc(func(ctx context.Context) ([]record.Record, error) {
		return s.joinedBooks(ctx, false)
	})
	res, err := s.bookEngine.Query(ctx, src, &req)
	if err != nil {
		return Page{}, fmt.Errorf("query books: %w", err)
	}
	return withRelevance(res), nil
}

// GetBook returns a book with its full author record.
func (s *Service) GetBook(ctx context.Context, rawID string) (record.Record, error) {
	id, err := parseID(rawID, "book")
	if err != nil {
		return nil, err
	}
	books, err := s.joinedBooks(ctx, true)
	if err != nil {
		return nil, err
	}
	b, ok := findByID(books, id)
	if !ok {
		return nil, fmt.Errorf("book with id %d: %w", id, domain.ErrNotFound)
	}
	return b, nil
}

// joinedBooks loads books and attaches their author under "author": the full
// record when full is set, otherwise {id, name}. Unknown authors become null.
func (s *Service) joinedBooks(ctx context.Context, full bool) ([]record.Record, error) {
	books, err := s.snapshot(ctx, s.books, domcat.Books)
	if err != nil {
		return nil, err
	}
	authors, err := s.snapshot(ctx, s.authors, domcat.Authors)
	if err != nil {
		return nil, err
	}
	byID := indexByID(authors)

	out := make([]record.Record, len(books))
	for i, b := range books {
		ref := record.NullValue()
		if a, ok := byID[b.Resolve("authorId").Text()]; ok && !b.Resolve("authorId").IsMissing() {
			if full {
				ref = record.Obj(a)
			} else {
				ref = record.Obj(map[string]record.Value{"id": a["id"], "name": a.Resolve("name")})
			}
		}
		out[i] = b.With("author", ref)
	}
	return out, nil
}

// aliasFilters renames clauses whose field is an alias key.
func aliasFilters(set filter.Set, aliases map[string]string) (filter.Set, error) {
	clauses := make([]filter.Clause, 0, set.Len())
	for _, c := range set.Clauses() {
		field := c.Field()
		if to, ok := aliases[field]; ok {
			field = to
		}
		nc, err := filter.NewClause(field, c.Expected())
		if err != nil {
			return filter.Set{}, err
		}
		clauses = append(clauses, nc)
	}
	return filter.NewSet(clauses...)
}
