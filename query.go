package shelfquery

import (
	"net/url"
	"strconv"
)

// Query is a fluent builder for list and search parameters. A nil *Query
// means defaults.
type Query struct {
	values url.Values
}

// NewQuery starts an empty query.
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Page sets the 1-based page number.
func (q *Query) Page(n int) *Query {
	q.values.Set("page", strconv.Itoa(n))
	return q
}

// Limit sets the page size.
func (q *Query) Limit(n int) *Query {
	q.values.Set("limit", strconv.Itoa(n))
	return q
}

// SortBy sets the sort field. "relevance" ranks by search score.
func (q *Query) SortBy(field string) *Query {
	q.values.Set("sortBy", field)
	return q
}

// Asc sorts ascending.
func (q *Query) Asc() *Query {
	q.values.Set("sortOrder", "asc")
	return q
}

// Desc sorts descending.
func (q *Query) Desc() *Query {
	q.values.Set("sortOrder", "desc")
	return q
}

// Search sets the free-text term.
func (q *Query) Search(term string) *Query {
	q.values.Set("search", term)
	return q
}

// Where adds an equality filter on a field path such as "author.name".
// The value is coerced the same way as a query-string parameter.
func (q *Query) Where(field, value string) *Query {
	q.values.Set(field, value)
	return q
}

// Values returns a copy of the parameters in query-string form.
func (q *Query) Values() url.Values {
	if q == nil {
		return url.Values{}
	}
	out := make(url.Values, len(q.values))
	for k, v := range q.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}
