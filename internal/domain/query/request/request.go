package request

import (
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/shelfquery/internal/domain"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/filter"
	"github.com/kailas-cloud/shelfquery/internal/domain/query/order"
)

// Query parameter defaults and limits.
const (
	DefaultPage   = 1
	DefaultLimit  = 10
	MinLimit      = 1
	MaxLimit      = 100
	DefaultSortBy = "id"
	// RelevanceField as sortBy ranks results by relevance score instead of a field.
	RelevanceField = "relevance"
)

// Reserved query-string keys. Every other key is a field filter.
const (
	KeyPage      = "page"
	KeyLimit     = "limit"
	KeySortBy    = "sortBy"
	KeySortOrder = "sortOrder"
	KeySearch    = "search"
)

// Request is a validated query descriptor.
type Request struct {
	page      int
	limit     int
	sortBy    string
	sortOrder order.Order
	search    string
	filters   filter.Set
}

// New validates a descriptor built from typed values.
// Checks run in order: page, limit, sort field, sort order.
func New(
	page, limit int,
	sortBy string,
	sortOrder order.Order,
	search string,
	filters filter.Set,
	allowedSortFields []string,
) (Request, error) {
	if page < 1 {
		return Request{}, invalidPage()
	}
	if limit < MinLimit || limit > MaxLimit {
		return Request{}, invalidLimit()
	}
	if err := checkSortField(sortBy, allowedSortFields); err != nil {
		return Request{}, err
	}
	if !sortOrder.IsValid() {
		return Request{}, invalidSortOrder()
	}
	return Request{
		page:      page,
		limit:     limit,
		sortBy:    sortBy,
		sortOrder: sortOrder,
		search:    search,
		filters:   filters,
	}, nil
}

// Parse builds a Request from query-string parameters.
// The first value of a repeated key wins. Absent keys take defaults; present
// but empty reserved values are validated as given (except search).
func Parse(params url.Values, allowedSortFields []string) (Request, error) {
	page := DefaultPage
	if raw, ok := first(params, KeyPage); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 1 {
			return Request{}, invalidPage()
		}
		page = n
	}

	limit := DefaultLimit
	if raw, ok := first(params, KeyLimit); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < MinLimit || n > MaxLimit {
			return Request{}, invalidLimit()
		}
		limit = n
	}

	sortBy := DefaultSortBy
	if raw, ok := first(params, KeySortBy); ok {
		sortBy = raw
	}
	if err := checkSortField(sortBy, allowedSortFields); err != nil {
		return Request{}, err
	}

	sortOrder := order.Asc
	if raw, ok := first(params, KeySortOrder); ok {
		o, valid := order.Parse(raw)
		if !valid {
			return Request{}, invalidSortOrder()
		}
		sortOrder = o
	}

	search, _ := first(params, KeySearch)

	filters, err := parseFilters(params)
	if err != nil {
		return Request{}, domain.NewValidationError(domain.ErrInvalidFilter, "%s", err.Error())
	}

	return Request{
		page:      page,
		limit:     limit,
		sortBy:    sortBy,
		sortOrder: sortOrder,
		search:    search,
		filters:   filters,
	}, nil
}

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// SortBy returns the sort field path.
func (r *Request) SortBy() string { return r.sortBy }

// SortOrder returns the sort direction.
func (r *Request) SortOrder() order.Order { return r.sortOrder }

// Search returns the raw free-text term.
func (r *Request) Search() string { return r.search }

// HasSearch reports whether free-text search is active.
func (r *Request) HasSearch() bool { return r.search != "" }

// ByRelevance reports whether results are ranked by relevance score.
func (r *Request) ByRelevance() bool { return r.sortBy == RelevanceField }

// Filters returns the field filters.
func (r *Request) Filters() filter.Set { return r.filters }

// WithFilters returns a copy of the request using filters.
func (r Request) WithFilters(filters filter.Set) Request {
	r.filters = filters
	return r
}

// WithSearch returns a copy of the request using term.
func (r Request) WithSearch(term string) Request {
	r.search = term
	return r
}

func first(params url.Values, key string) (string, bool) {
	vs, ok := params[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func parseFilters(params url.Values) (filter.Set, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if isReserved(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]filter.Clause, 0, len(keys))
	for _, k := range keys {
		raw, _ := first(params, k)
		v, ok := filter.Coerce(raw)
		if !ok {
			continue
		}
		c, err := filter.NewClause(k, v)
		if err != nil {
			return filter.Set{}, err
		}
		clauses = append(clauses, c)
	}
	return filter.NewSet(clauses...)
}

func isReserved(key string) bool {
	switch key {
	case KeyPage, KeyLimit, KeySortBy, KeySortOrder, KeySearch:
		return true
	}
	return false
}

func checkSortField(sortBy string, allowed []string) error {
	if len(allowed) == 0 || slices.Contains(allowed, sortBy) {
		return nil
	}
	return domain.NewValidationError(domain.ErrInvalidSortField,
		"invalid sort field %q, allowed fields: %s", sortBy, strings.Join(allowed, ", "))
}

func invalidPage() error {
	return domain.NewValidationError(domain.ErrInvalidPage, "page must be a positive integer")
}

func invalidLimit() error {
	return domain.NewValidationError(domain.ErrInvalidLimit,
		"limit must be between %d and %d", MinLimit, MaxLimit)
}

func invalidSortOrder() error {
	return domain.NewValidationError(domain.ErrInvalidSortOrder, `sort order must be "asc" or "desc"`)
}
