package catalog

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/kailas-cloud/shelfquery/internal/domain"
	domcat "github.com/kailas-cloud/shelfquery/internal/domain/catalog"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/request"
	"github.com/kailas-cloud/shelfquery/internal/domain/record"
)

// AuthorBooks is one author with a page of their books.
type AuthorBooks struct {
	Author record.Record
	Books  Page
}

// ListAuthors queries the author collection.
func (s *Service) ListAuthors(ctx context.Context, params url.Values) (Page, error) {
	start := time.Now()
	page, err := s.runAuthorQuery(ctx, params)
	s.observe(ctx, domcat.Authors, start, page.Total(), err)
	return page, err
}

// SearchAuthors serves author search. Author filters need no aliasing, so it
// shares ListAuthors' pipeline.
func (s *Service) SearchAuthors(ctx context.Context, params url.Values) (Page, error) {
	return s.ListAuthors(ctx, params)
}

func (s *Service) runAuthorQuery(ctx context.Context, params url.Values) (Page, error) {
	req, err := request.Parse(params, domcat.AuthorSortFields)
	if err != nil {
		return Page{}, fmt.Errorf("parse author query: %w", err)
	}
	res, err := s.authorEngine.Query(ctx, s.authors, &req)
	if err != nil {
		return Page{}, fmt.Errorf("query authors: %w", err)
	}
	return withRelevance(res), nil
}

// GetAuthor returns an author by id.
func (s *Service) GetAuthor(ctx context.Context, rawID string) (record.Record, error) {
	id, err := parseID(rawID, "author")
	if err != nil {
		return nil, err
	}
	authors, err := s.snapshot(ctx, s.authors, domcat.Authors)
	if err != nil {
		return nil, err
	}
	a, ok := findByID(authors, id)
	if !ok {
		return nil, fmt.Errorf("author with id %d: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

// AuthorBooks validates the query, resolves the author, then queries that
// author's books.
func (s *Service) AuthorBooks(ctx context.Context, rawID string, params url.Values) (AuthorBooks, error) {
	start := time.Now()
	out, err := s.runAuthorBooks(ctx, rawID, params)
	s.observe(ctx, domcat.Books, start, out.Books.Total(), err)
	return out, err
}

func (s *Service) runAuthorBooks(ctx context.Context, rawID string, params url.Values) (AuthorBooks, error) {
	req, err := request.Parse(params, domcat.AuthorBookSortFields)
	if err != nil {
		return AuthorBooks{}, fmt.Errorf("parse author books query: %w", err)
	}
	author, err := s.GetAuthor(ctx, rawID)
	if err != nil {
		return AuthorBooks{}, err
	}
	id, _ := author.Resolve("id").AsNumber()

	src := sourceFunc(func(ctx context.Context) ([]record.Record, error) {
		books, err := s.snapshot(ctx, s.books, domcat.Books)
		if err != nil {
			return nil, err
		}
		own := make([]record.Record, 0, len(books))
		for _, b := range books {
			if n, ok := b.Resolve("authorId").AsNumber(); ok && n == id {
				own = append(own, b)
			}
		}
		return own, nil
	})
	res, err := s.authorBookEngine.Query(ctx, src, &req)
	if err != nil {
		return AuthorBooks{}, fmt.Errorf("query author books: %w", err)
	}
	return AuthorBooks{Author: author, Books: withRelevance(res)}, nil
}
