package catalog

import (
	"context"
	"math"
	"sort"
	"time"

	domcat "github.com/kailas-cloud/shelfquery/internal/domain/catalog"
	"github.com/kailas-cloud/shelfquery/internal/domain/record"
)

const topGenreCount = 5

// Stats summarizes the catalog.
type Stats struct {
	TotalAuthors          int
	TotalBooks            int
	AuthorsWithoutBooks   int
	AverageBooksPerAuthor float64

	// MostProlific is nil when there are no authors.
	MostProlific *AuthorCount

	// AveragePublicationYear, Oldest and Newest are nil when no book has a year.
	AveragePublicationYear *int
	Oldest                 *BookYear
	Newest                 *BookYear

	GenreTotal int
	TopGenres  []GenreCount
}

// AuthorCount pairs an author name with a book count.
type AuthorCount struct {
	Name      string
	BookCount int
}

// BookYear identifies a book by title, year and author name.
type BookYear struct {
	Title  string
	Year   int
	Author string
}

// GenreCount is the number of books in a genre.
type GenreCount struct {
	Genre string
	Count int
}

// AuthorStat is per-author bibliography data.
type AuthorStat struct {
	Author     record.Record
	TotalBooks int
	Genres     []string
	// Span is nil unless the author has at least two dated books.
	Span  *PublicationSpan
	Books []record.Record
}

// PublicationSpan is the range of an author's publication years.
type PublicationSpan struct {
	Earliest    int
	Latest      int
	YearsActive int
}

// Stats computes catalog-wide statistics.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	start := time.Now()
	st, err := s.computeStats(ctx)
	s.observe(ctx, "stats", start, st.TotalBooks, err)
	return st, err
}

func (s *Service) computeStats(ctx context.Context) (Stats, error) {
	authors, err := s.snapshot(ctx, s.authors, domcat.Authors)
	if err != nil {
		return Stats{}, err
	}
	books, err := s.snapshot(ctx, s.books, domcat.Books)
	if err != nil {
		return Stats{}, err
	}
	names := authorNames(authors)

	st := Stats{TotalAuthors: len(authors), TotalBooks: len(books)}
	if st.TotalAuthors > 0 {
		st.AverageBooksPerAuthor = math.Round(float64(st.TotalBooks)/float64(st.TotalAuthors)*10) / 10
	}

	for _, a := range authors {
		n := 0
		for _, b := range books {
			if sameAuthor(b, a) {
				n++
			}
		}
		if n == 0 {
			st.AuthorsWithoutBooks++
		}
		// ties go to the later author
		if st.MostProlific == nil || n >= st.MostProlific.BookCount {
			st.MostProlific = &AuthorCount{Name: a.Resolve("name").Text(), BookCount: n}
		}
	}

	var yearSum float64
	dated := 0
	for _, b := range books {
		y, ok := year(b)
		if !ok {
			continue
		}
		dated++
		yearSum += float64(y)
		// ties go to the later book in both directions
		if st.Oldest == nil || y <= st.Oldest.Year {
			st.Oldest = bookYear(b, y, names)
		}
		if st.Newest == nil || y >= st.Newest.Year {
			st.Newest = bookYear(b, y, names)
		}
	}
	if dated > 0 {
		avg := int(math.Floor(yearSum/float64(dated) + 0.5))
		st.AveragePublicationYear = &avg
	}

	counts := map[string]int{}
	var genres []string
	for _, b := range books {
		g := b.Resolve("genre")
		if !g.Truthy() {
			continue
		}
		if _, seen := counts[g.Text()]; !seen {
			genres = append(genres, g.Text())
		}
		counts[g.Text()]++
	}
	st.GenreTotal = len(genres)
	sort.SliceStable(genres, func(i, j int) bool { return counts[genres[i]] > counts[genres[j]] })
	if len(genres) > topGenreCount {
		genres = genres[:topGenreCount]
	}
	st.TopGenres = make([]GenreCount, len(genres))
	for i, g := range genres {
		st.TopGenres[i] = GenreCount{Genre: g, Count: counts[g]}
	}
	return st, nil
}

// AuthorStats returns bibliography statistics for every author in stored order.
func (s *Service) AuthorStats(ctx context.Context) ([]AuthorStat, error) {
	start := time.Now()
	out, err := s.computeAuthorStats(ctx)
	s.observe(ctx, "stats", start, len(out), err)
	return out, err
}

func (s *Service) computeAuthorStats(ctx context.Context) ([]AuthorStat, error) {
	authors, err := s.snapshot(ctx, s.authors, domcat.Authors)
	if err != nil {
		return nil, err
	}
	books, err := s.snapshot(ctx, s.books, domcat.Books)
	if err != nil {
		return nil, err
	}

	out := make([]AuthorStat, 0, len(authors))
	for _, a := range authors {
		st := AuthorStat{
			Author: pick(a, "id", "name", "bio", "birthYear"),
			Genres: []string{},
			Books:  []record.Record{},
		}
		var years []int
		seen := map[string]bool{}
		for _, b := range books {
			if !sameAuthor(b, a) {
				continue
			}
			st.TotalBooks++
			st.Books = append(st.Books, pick(b, "id", "title", "publishedYear", "genre"))
			if y, ok := year(b); ok {
				years = append(years, y)
			}
			if g := b.Resolve("genre"); g.Truthy() && !seen[g.Text()] {
				seen[g.Text()] = true
				st.Genres = append(st.Genres, g.Text())
			}
		}
		if len(years) > 1 {
			sort.Ints(years)
			first, last := years[0], years[len(years)-1]
			st.Span = &PublicationSpan{Earliest: first, Latest: last, YearsActive: last - first}
		}
		out = append(out, st)
	}
	return out, nil
}

func sameAuthor(book, author record.Record) bool {
	ref := book.Resolve("authorId")
	id := author.Resolve("id")
	return !ref.IsMissing() && ref.Equal(id)
}

// year returns a truthy numeric publishedYear.
func year(b record.Record) (int, bool) {
	v := b.Resolve("publishedYear")
	n, ok := v.AsNumber()
	if !ok || !v.Truthy() {
		return 0, false
	}
	return int(n), true
}

func bookYear(b record.Record, y int, names map[string]string) *BookYear {
	return &BookYear{
		Title:  b.Resolve("title").Text(),
		Year:   y,
		Author: names[b.Resolve("authorId").Text()],
	}
}

func authorNames(authors []record.Record) map[string]string {
	out := make(map[string]string, len(authors))
	for id, a := range indexByID(authors) {
		out[id] = a.Resolve("name").Text()
	}
	return out
}

// pick copies the present keys of r.
func pick(r record.Record, keys ...string) record.Record {
	out := make(record.Record, len(keys))
	for _, k := range keys {
		if v, ok := r[k]; ok {
			out[k] = v
		}
	}
	return out
}
