package shelfquery

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/shelfquery/internal/db"
	dbBolt "github.com/kailas-cloud/shelfquery/internal/db/bolt"
	dbMemory "github.com/kailas-cloud/shelfquery/internal/db/memory"
	dbRedis "github.com/kailas-cloud/shelfquery/internal/db/redis"
	domcat "github.com/kailas-cloud/shelfquery/internal/domain/catalog"
	"github.com/kailas-cloud/shelfquery/internal/domain/record"
	recordrepo "github.com/kailas-cloud/shelfquery/internal/repository/record"
	cataloguc "github.com/kailas-cloud/shelfquery/internal/usecase/catalog"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "shelfquery:"
)

// Re-exported result types.
type (
	// Record is a schemaless catalog item.
	Record = record.Record
	// Page is one page of records with pagination metadata.
	Page = cataloguc.Page
	// SearchResult is one page of mixed author and book hits.
	SearchResult = cataloguc.SearchResult
	// AuthorBooks is an author with a page of their books.
	AuthorBooks = cataloguc.AuthorBooks
	// Stats summarizes the catalog.
	Stats = cataloguc.Stats
	// AuthorStat is per-author bibliography data.
	AuthorStat = cataloguc.AuthorStat
)

// Client is the shelfquery SDK entry point. It runs the query engine in
// process against the configured store.
type Client struct {
	store   db.Store
	books   *recordrepo.Repo
	authors *recordrepo.Repo
	catalog *cataloguc.Service
}

// New creates a Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:           "memory",
		keyPrefix:        defaultKeyPrefix,
		minSearchLength:  cataloguc.DefaultMinSearchLength,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("shelfquery: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "memory":
		return dbMemory.NewStore(), nil
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Password:  cfg.password,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("shelfquery: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case "bolt":
		s, err := dbBolt.NewStore(cfg.path)
		if err != nil {
			return nil, fmt.Errorf("shelfquery: create bolt store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("shelfquery: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	books := recordrepo.New(store, domcat.Books)
	authors := recordrepo.New(store, domcat.Authors)
	return &Client{
		store:   store,
		books:   books,
		authors: authors,
		catalog: cataloguc.New(books, authors, cfg.minSearchLength),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Seed replaces the catalog with the bundled sample data.
func (c *Client) Seed(ctx context.Context) error {
	return c.replace(ctx, domcat.SeedBooks(), domcat.SeedAuthors())
}

// Load replaces the catalog with caller-supplied items. Every item needs an
// "id"; books reference their author through "authorId".
func (c *Client) Load(ctx context.Context, books, authors []map[string]any) error {
	bookRecs, err := toRecords(books)
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	authorRecs, err := toRecords(authors)
	if err != nil {
		return fmt.Errorf("load authors: %w", err)
	}
	return c.replace(ctx, bookRecs, authorRecs)
}

func (c *Client) replace(ctx context.Context, books, authors []record.Record) error {
	if err := c.authors.Seed(ctx, authors); err != nil {
		return fmt.Errorf("store authors: %w", err)
	}
	if err := c.books.Seed(ctx, books); err != nil {
		return fmt.Errorf("store books: %w", err)
	}
	return nil
}

func toRecords(items []map[string]any) ([]record.Record, error) {
	out := make([]record.Record, len(items))
	for i, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		rec, err := record.FromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = rec
	}
	return out, nil
}

// Books lists books with their author reference.
func (c *Client) Books(ctx context.Context, q *Query) (Page, error) {
	return c.catalog.ListBooks(ctx, q.Values())
}

// SearchBooks lists books, accepting the author and year filter aliases.
func (c *Client) SearchBooks(ctx context.Context, q *Query) (Page, error) {
	return c.catalog.SearchBooks(ctx, q.Values())
}

// Book returns one book with its full author.
func (c *Client) Book(ctx context.Context, id int64) (Record, error) {
	return c.catalog.GetBook(ctx, strconv.FormatInt(id, 10))
}

// Authors lists authors.
func (c *Client) Authors(ctx context.Context, q *Query) (Page, error) {
	return c.catalog.ListAuthors(ctx, q.Values())
}

// Author returns one author.
func (c *Client) Author(ctx context.Context, id int64) (Record, error) {
	return c.catalog.GetAuthor(ctx, strconv.FormatInt(id, 10))
}

// AuthorBooks returns an author and a page of their books.
func (c *Client) AuthorBooks(ctx context.Context, id int64, q *Query) (AuthorBooks, error) {
	return c.catalog.AuthorBooks(ctx, strconv.FormatInt(id, 10), q.Values())
}

// Search runs a relevance-ranked search over authors and books.
func (c *Client) Search(ctx context.Context, q *Query) (SearchResult, error) {
	return c.catalog.Search(ctx, q.Values())
}

// Stats computes catalog-wide statistics.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	return c.catalog.Stats(ctx)
}

// AuthorStats computes per-author statistics.
func (c *Client) AuthorStats(ctx context.Context) ([]AuthorStat, error) {
	return c.catalog.AuthorStats(ctx)
}
