package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfquery/internal/domain"
	domcat "github.com/kailas-cloud/shelfquery/internal/domain/catalog"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/paging"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/relevance"
	"github.com/kailas-cloud/shelfquery/internal/domain/record"
	"github.com/kailas-cloud/shelfquery/internal/logger"
	"github.com/kailas-cloud/shelfquery/internal/metrics"
	"github.com/kailas-cloud/shelfquery/internal/usecase/query"
)

// DefaultMinSearchLength is the shortest accepted global search term.
const DefaultMinSearchLength = 2

// collection label used for global search metrics
const searchLabel = "search"

// Query outcomes recorded in metrics.
const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

// Page is one page of catalog records.
type Page = paging.Result[record.Record]

// Service answers read queries over the book and author collections.
type Service struct {
	books        Repository
	authors      Repository
	minSearchLen int

	bookEngine       *query.Engine[record.Record]
	authorEngine     *query.Engine[record.Record]
	authorBookEngine *query.Engine[record.Record]
	globalEngine     *query.Engine[record.Record]
}

// New creates a catalog service. minSearchLen below 1 selects the default.
func New(books, authors Repository, minSearchLen int) *Service {
	if minSearchLen < 1 {
		minSearchLen = DefaultMinSearchLength
	}
	return &Service{
		books:        books,
		authors:      authors,
		minSearchLen: minSearchLen,
		bookEngine: query.NewEngine(record.Access).
			WithSearchFields(domcat.BookSearchFields...).
			WithScorer(fieldScorer(domcat.BookScoreFields)),
		authorEngine: query.NewEngine(record.Access).
			WithSearchFields(domcat.AuthorSearchFields...),
		authorBookEngine: query.NewEngine(record.Access).
			WithSearchFields(domcat.AuthorBookSearchFields...),
		globalEngine: query.NewEngine(record.Access),
	}
}

// fieldScorer scores the truthy values of fields against the term.
func fieldScorer(fields []string) query.Scorer[record.Record] {
	return func(term string, r record.Record) int {
		texts := make([]string, 0, len(fields))
		for _, f := range fields {
			if v := r.Resolve(f); v.Truthy() {
				texts = append(texts, v.Text())
			}
		}
		return relevance.Score(term, texts...)
	}
}

// withRelevance exposes the score of ranked hits as a "relevance" field.
func withRelevance(res paging.Result[query.Hit[record.Record]]) Page {
	return paging.Map(res, func(h query.Hit[record.Record]) record.Record {
		if !h.Scored {
			return h.Item
		}
		return h.Item.With("relevance", record.Int(int64(h.Score)))
	})
}

func (s *Service) observe(ctx context.Context, collection string, start time.Time, total int, err error) {
	outcome := outcomeOK
	switch {
	case err == nil:
	case isCallerError(err):
		outcome = outcomeInvalid
	default:
		outcome = outcomeError
	}

	elapsed := time.Since(start)
	metrics.QueriesTotal.WithLabelValues(collection, outcome).Inc()
	metrics.QueryDuration.WithLabelValues(collection).Observe(elapsed.Seconds())
	if err == nil {
		metrics.QueryResults.WithLabelValues(collection).Observe(float64(total))
	}

	log := logger.FromContext(ctx)
	if outcome == outcomeError {
		log.Error("catalog query failed",
			zap.String("collection", collection),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return
	}
	log.Debug("catalog query",
		zap.String("collection", collection),
		zap.String("outcome", outcome),
		zap.Int("total", total),
		zap.Duration("duration", elapsed),
	)
}

func isCallerError(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve) || errors.Is(err, domain.ErrNotFound)
}

// parseID accepts a base-10 integer id.
func parseID(raw, kind string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(domain.ErrInvalidID, "invalid %s ID", kind)
	}
	return id, nil
}

// hasID reports whether the record's id field equals id.
func hasID(r record.Record, id int64) bool {
	n, ok := r.Resolve("id").AsNumber()
	return ok && n == float64(id)
}

func findByID(recs []record.Record, id int64) (record.Record, bool) {
	for _, r := range recs {
		if hasID(r, id) {
			return r, true
		}
	}
	return nil, false
}

// indexByID keys records by the text form of their id.
func indexByID(recs []record.Record) map[string]record.Record {
	out := make(map[string]record.Record, len(recs))
	for _, r := range recs {
		id := r.Resolve("id")
		if id.IsMissing() {
			continue
		}
		if _, dup := out[id.Text()]; !dup {
			out[id.Text()] = r
		}
	}
	return out
}

func (s *Service) snapshot(ctx context.Context, repo Repository, name string) ([]record.Record, error) {
	recs, err := repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return recs, nil
}
