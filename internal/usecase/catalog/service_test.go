package catalog

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"testing"

	"github.com/kailas-cloud/shelfquery/internal/domain"
	domcat "github.com/kailas-cloud/shelfquery/internal/domain/catalog"
	"github.com/kailas-cloud/shelfquery/internal/domain/record"
)

// --- Mocks ---

type fakeRepo struct {
	recs  []record.Record
	err   error
	calls int
}

func (f *fakeRepo) Snapshot(_ context.Context) ([]record.Record, error) {
	f.calls++
	return f.recs, f.err
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(&fakeRepo{recs: domcat.SeedBooks()}, &fakeRepo{recs: domcat.SeedAuthors()}, 0)
}

func ids(t *testing.T, recs []record.Record) []int {
	t.Helper()
	out := make([]int, len(recs))
	for i, r := range recs {
		n, ok := r.Resolve("id").AsNumber()
		if !ok {
			t.Fatalf("record %d has no numeric id", i)
		}
		out[i] = int(n)
	}
	return out
}

func q(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Add(kv[i], kv[i+1])
	}
	return v
}

// --- Books ---

func TestListBooks_Defaults(t *testing.T) {
	s := newTestService(t)
	page, err := s.ListBooks(context.Background(), url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total() != 7 || page.Page() != 1 || page.Limit() != 10 || page.TotalPages() != 1 {
		t.Errorf("meta = total %d page %d limit %d pages %d", page.Total(), page.Page(), page.Limit(), page.TotalPages())
	}
	if got := ids(t, page.Items()); !slices.Equal(got, []int{1, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("ids = %v", got)
	}

	emma := page.Items()[6]
	if got := emma.Resolve("author.name").Text(); got != "Jane Austen" {
		t.Errorf("author.name = %q", got)
	}
	if !emma.Resolve("author.bio").IsMissing() {
		t.Error("listing should carry only the short author reference")
	}
	if !emma.Resolve("relevance").IsMissing() {
		t.Error("relevance attached without a ranked search")
	}
}

func TestListBooks_SearchByRelevance(t *testing.T) {
	s := newTestService(t)
	page, err := s.ListBooks(context.Background(), q("search", "harry", "sortBy", "relevance"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(t, page.Items()); !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("ids = %v", got)
	}
	if n, _ := page.Items()[0].Resolve("relevance").AsNumber(); n != 50 {
		t.Errorf("relevance = %v, want 50", n)
	}
}

func TestListBooks_SearchMatchesAuthorName(t *testing.T) {
	s := newTestService(t)
	page, err := s.ListBooks(context.Background(), q("search", "ROWLING"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(t, page.Items()); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("ids = %v", got)
	}
}

func TestListBooks_FilterAndSort(t *testing.T) {
	s := newTestService(t)

	page, err := s.ListBooks(context.Background(), q("genre", "fiction"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(t, page.Items()); !slices.Equal(got, []int{3, 5}) {
		t.Errorf("genre filter ids = %v", got)
	}

	page, err = s.ListBooks(context.Background(), q("sortBy", "publishedYear", "sortOrder", "desc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(t, page.Items()); !slices.Equal(got, []int{2, 1, 5, 3, 4, 6, 7}) {
		t.Errorf("year desc ids = %v", got)
	}
}

func TestListBooks_Pagination(t *testing.T) {
	s := newTestService(t)
	page, err := s.ListBooks(context.Background(), q("page", "2", "limit", "3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(t, page.Items()); !slices.Equal(got, []int{4, 5, 6}) {
		t.Errorf("ids = %v", got)
	}
	if page.TotalPages() != 3 || !page.HasNext() || !page.HasPrev() {
		t.Errorf("pages=%d next=%v prev=%v", page.TotalPages(), page.HasNext(), page.HasPrev())
	}
}

func TestListBooks_InvalidQuery(t *testing.T) {
	s := newTestService(t)
	_, err := s.ListBooks(context.Background(), q("sortBy", "isbn"))
	if !errors.Is(err, domain.ErrInvalidSortField) {
		t.Errorf("err = %v, want ErrInvalidSortField", err)
	}
}

func TestListBooks_RepositoryError(t *testing.T) {
	boom := errors.New("store down")
	s := New(&fakeRepo{err: boom}, &fakeRepo{recs: domcat.SeedAuthors()}, 0)
	if _, err := s.ListBooks(context.Background(), url.Values{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want store error", err)
	}
}

func TestSearchBooks_FilterAliases(t *testing.T) {
	s := newTestService(t)

	page, err := s.SearchBooks(context.Background(), q("author", "orwell"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(t, page.Items()); !slices.Equal(got, []int{3, 4}) {
		t.Errorf("author alias ids = %v", got)
	}

	page, err = s.SearchBooks(context.Background(), q("year", "1965"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(t, page.Items()); !slices.Equal(got, []int{5}) {
		t.Errorf("year alias ids = %v", got)
	}
}

func TestGetBook(t *testing.T) {
	s := newTestService(t)

	b, err := s.GetBook(context.Background(), "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Resolve("title").Text() != "1984" {
		t.Errorf("title = %q", b.Resolve("title").Text())
	}
	if b.Resolve("author.bio").Text() != "English novelist and essayist" {
		t.Errorf("expected full author record, got %v", b.Resolve("author").Text())
	}

	if _, err := s.GetBook(context.Background(), "abc"); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("bad id err = %v", err)
	}
	if _, err := s.GetBook(context.Background(), "99"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestJoinedBooks_UnknownAuthorIsNull(t *testing.T) {
	books := []record.Record{{"id": record.Int(1), "title": record.Str("Orphan"), "authorId": record.Int(42)}}
	s := New(&fakeRepo{recs: books}, &fakeRepo{recs: domcat.SeedAuthors()}, 0)

	b, err := s.GetBook(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Resolve("author").Kind() != record.Null {
		t.Errorf("author kind = %d, want Null", b.Resolve("author").Kind())
	}
}

// --- Authors ---

func TestListAuthors_SearchBio(t *testing.T) {
	s := newTestService(t)
	page, err := s.ListAuthors(context.Background(), q("search", "english", "sortBy", "relevance"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(t, page.Items()); !slices.Equal(got, []int{2, 4}) {
		t.Errorf("ids = %v", got)
	}
}

func TestSearchAuthors_FilterBirthYear(t *testing.T) {
	s := newTestService(t)
	page, err := s.SearchAuthors(context.Background(), q("birthYear", "1903"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(t, page.Items()); !slices.Equal(got, []int{2}) {
		t.Errorf("ids = %v", got)
	}
}

func TestGetAuthor(t *testing.T) {
	s := newTestService(t)
	a, err := s.GetAuthor(context.Background(), " 1 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Resolve("name").Text() != "J.K. Rowling" {
		t.Errorf("name = %q", a.Resolve("name").Text())
	}
	if _, err := s.GetAuthor(context.Background(), "1x"); !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("bad id err = %v", err)
	}
	if _, err := s.GetAuthor(context.Background(), "77"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestAuthorBooks(t *testing.T) {
	s := newTestService(t)
	out, err := s.AuthorBooks(context.Background(), "2", q("sortBy", "title"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Author.Resolve("name").Text() != "George Orwell" {
		t.Errorf("author = %q", out.Author.Resolve("name").Text())
	}
	if got := ids(t, out.Books.Items()); !slices.Equal(got, []int{3, 4}) {
		t.Errorf("ids = %v", got)
	}
}

func TestAuthorBooks_ValidatesQueryBeforeID(t *testing.T) {
	s := newTestService(t)
	_, err := s.AuthorBooks(context.Background(), "nope", q("sortBy", "relevance"))
	if !errors.Is(err, domain.ErrInvalidSortField) {
		t.Errorf("err = %v, want ErrInvalidSortField", err)
	}
	if _, err := s.AuthorBooks(context.Background(), "9", url.Values{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// --- Global search ---

func TestSearch_RanksAcrossCollections(t *testing.T) {
	s := newTestService(t)
	res, err := s.Search(context.Background(), q("search", " Harry "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Term != " Harry " {
		t.Errorf("Term = %q", res.Term)
	}

	items := res.Page.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(items))
	}
	wantTypes := []string{"book", "book", "author"}
	wantScores := []float64{50, 50, 25}
	for i, it := range items {
		if got := it.Resolve("type").Text(); got != wantTypes[i] {
			t.Errorf("hit %d type = %q, want %q", i, got, wantTypes[i])
		}
		if got, _ := it.Resolve("relevance").AsNumber(); got != wantScores[i] {
			t.Errorf("hit %d relevance = %v, want %v", i, got, wantScores[i])
		}
	}
	if !items[0].Resolve("authorId").IsMissing() {
		t.Error("book hits should not expose authorId")
	}
	if items[0].Resolve("author.name").Text() != "J.K. Rowling" {
		t.Error("book hit lacks author reference")
	}
}

func TestSearch_TypeFilterAndSort(t *testing.T) {
	s := newTestService(t)

	res, err := s.Search(context.Background(), q("search", "harry", "type", "author"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(t, res.Page.Items()); !slices.Equal(got, []int{1}) {
		t.Errorf("author-only ids = %v", got)
	}

	res, err = s.Search(context.Background(), q("search", "harry", "sortBy", "title"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := res.Page.Items()
	if got := ids(t, items); !slices.Equal(got, []int{2, 1, 1}) {
		t.Errorf("title sort ids = %v", got)
	}
	if items[2].Resolve("type").Text() != "author" {
		t.Error("hit without a title should sort last")
	}
}

func TestSearch_TermValidation(t *testing.T) {
	s := newTestService(t)
	for _, params := range []url.Values{{}, q("search", "h"), q("search", "  x  ")} {
		if _, err := s.Search(context.Background(), params); !errors.Is(err, domain.ErrInvalidSearch) {
			t.Errorf("%v: err = %v, want ErrInvalidSearch", params, err)
		}
	}
	if _, err := s.Search(context.Background(), q("search", "harry", "sortBy", "id")); !errors.Is(err, domain.ErrInvalidSortField) {
		t.Errorf("err = %v, want ErrInvalidSortField", err)
	}
}

func TestSearch_CustomMinLength(t *testing.T) {
	s := New(&fakeRepo{recs: domcat.SeedBooks()}, &fakeRepo{recs: domcat.SeedAuthors()}, 4)
	if _, err := s.Search(context.Background(), q("search", "dun")); !errors.Is(err, domain.ErrInvalidSearch) {
		t.Errorf("err = %v", err)
	}
	res, err := s.Search(context.Background(), q("search", "dune"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Page.Total() != 1 {
		t.Errorf("Total() = %d, want 1", res.Page.Total())
	}
}

// --- Stats ---

func TestStats(t *testing.T) {
	s := newTestService(t)
	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.TotalAuthors != 5 || st.TotalBooks != 7 || st.AuthorsWithoutBooks != 1 {
		t.Errorf("summary = %+v", st)
	}
	if st.AverageBooksPerAuthor != 1.4 {
		t.Errorf("AverageBooksPerAuthor = %v", st.AverageBooksPerAuthor)
	}
	if st.MostProlific == nil || st.MostProlific.Name != "Jane Austen" || st.MostProlific.BookCount != 2 {
		t.Errorf("MostProlific = %+v", st.MostProlific)
	}
	if st.AveragePublicationYear == nil || *st.AveragePublicationYear != 1945 {
		t.Errorf("AveragePublicationYear = %v", st.AveragePublicationYear)
	}
	if st.Oldest == nil || st.Oldest.Title != "Pride and Prejudice" || st.Oldest.Author != "Jane Austen" {
		t.Errorf("Oldest = %+v", st.Oldest)
	}
	if st.Newest == nil || st.Newest.Year != 1998 || st.Newest.Author != "J.K. Rowling" {
		t.Errorf("Newest = %+v", st.Newest)
	}
	if st.GenreTotal != 5 || len(st.TopGenres) != 5 {
		t.Fatalf("genres total=%d top=%d", st.GenreTotal, len(st.TopGenres))
	}
	if st.TopGenres[0] != (GenreCount{Genre: "Fantasy", Count: 2}) {
		t.Errorf("top genre = %+v", st.TopGenres[0])
	}
	if st.TopGenres[1].Genre != "Dystopian Fiction" {
		t.Errorf("ties should keep first-seen order, got %+v", st.TopGenres[1])
	}
}

func TestStats_Empty(t *testing.T) {
	s := New(&fakeRepo{}, &fakeRepo{}, 0)
	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.MostProlific != nil || st.Oldest != nil || st.AveragePublicationYear != nil {
		t.Errorf("expected nil aggregates, got %+v", st)
	}
	if st.AverageBooksPerAuthor != 0 || len(st.TopGenres) != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestAuthorStats(t *testing.T) {
	s := newTestService(t)
	out, err := s.AuthorStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 authors, got %d", len(out))
	}

	rowling := out[0]
	if rowling.TotalBooks != 2 || !slices.Equal(rowling.Genres, []string{"Fantasy"}) {
		t.Errorf("rowling = %+v", rowling)
	}
	if rowling.Span == nil || rowling.Span.YearsActive != 1 || rowling.Span.Earliest != 1997 {
		t.Errorf("rowling span = %+v", rowling.Span)
	}
	if !rowling.Books[0].Resolve("isbn").IsMissing() {
		t.Error("bibliography entries should omit isbn")
	}

	if out[2].Span != nil {
		t.Errorf("single-book author span = %+v", out[2].Span)
	}
	austen := out[3]
	if austen.TotalBooks != 2 || austen.Span != nil {
		t.Errorf("austen = %+v", austen)
	}
	if anon := out[4]; anon.TotalBooks != 0 || len(anon.Books) != 0 || anon.Genres == nil {
		t.Errorf("anonymous = %+v", anon)
	}
}
