// Package paging slices ordered results into pages.
package paging

// Result is one page of items plus pagination metadata.
type Result[T any] struct {
	items      []T
	total      int
	page       int
	limit      int
	totalPages int
}

// Paginate returns page (1-based) of items with the given page size.
// Pages past the end are empty; page and limit below 1 are treated as 1.
// The returned items never alias the input slice.
func Paginate[T any](items []T, page, limit int) Result[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	total := len(items)
	totalPages := (total + limit - 1) / limit

	var out []T
	// page-1 < totalPages also guards (page-1)*limit against overflow
	if page-1 < totalPages {
		start := (page - 1) * limit
		end := min(start+limit, total)
		out = make([]T, end-start)
		copy(out, items[start:end])
	} else {
		out = []T{}
	}

	return Result[T]{
		items:      out,
		total:      total,
		page:       page,
		limit:      limit,
		totalPages: totalPages,
	}
}

// Map converts the items of a page, keeping its metadata.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	items := make([]U, len(r.items))
	for i, it := range r.items {
		items[i] = fn(it)
	}
	return Result[U]{
		items:      items,
		total:      r.total,
		page:       r.page,
		limit:      r.limit,
		totalPages: r.totalPages,
	}
}

// Items returns the page data.
func (r Result[T]) Items() []T { return r.items }

// Total returns the number of items across all pages.
func (r Result[T]) Total() int { return r.total }

// Page returns the 1-based page number.
func (r Result[T]) Page() int { return r.page }

// Limit returns the page size.
func (r Result[T]) Limit() int { return r.limit }

// TotalPages returns ceil(total/limit).
func (r Result[T]) TotalPages() int { return r.totalPages }

// HasNext reports whether a later page exists.
func (r Result[T]) HasNext() bool { return r.page < r.totalPages }

// HasPrev reports whether this is not the first page.
func (r Result[T]) HasPrev() bool { return r.page > 1 }
