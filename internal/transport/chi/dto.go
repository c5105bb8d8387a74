package chi

import (
	"github.com/kailas-cloud/shelfquery/internal/domain/record"
	cataloguc "github.com/kailas-cloud/shelfquery/internal/usecase/catalog"
)

type statsResponse struct {
	Overview    statsOverview     `json:"overview"`
	Publication statsPublication  `json:"publication"`
	Genres      statsGenres       `json:"genres"`
	Authors     statsAuthorsBlock `json:"authors"`
}

type statsOverview struct {
	TotalAuthors          int     `json:"totalAuthors"`
	TotalBooks            int     `json:"totalBooks"`
	AverageBooksPerAuthor float64 `json:"averageBooksPerAuthor"`
}

type statsPublication struct {
	AverageYear *int          `json:"averagePublicationYear"`
	Oldest      *bookYearJSON `json:"oldestBook"`
	Newest      *bookYearJSON `json:"newestBook"`
}

type bookYearJSON struct {
	Title  string `json:"title"`
	Year   int    `json:"year"`
	Author string `json:"author"`
}

type statsGenres struct {
	Total int              `json:"totalGenres"`
	Top   []genreCountJSON `json:"topGenres"`
}

type genreCountJSON struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

type statsAuthorsBlock struct {
	MostProlific        *authorCountJSON `json:"mostProlificAuthor"`
	AuthorsWithoutBooks int              `json:"authorsWithoutBooks"`
}

type authorCountJSON struct {
	Name      string `json:"name"`
	BookCount int    `json:"bookCount"`
}

type authorStatResponse struct {
	Author     record.Record   `json:"author"`
	TotalBooks int             `json:"totalBooks"`
	Genres     []string        `json:"genres"`
	Span       *spanJSON       `json:"publicationSpan"`
	Books      []record.Record `json:"books"`
}

type spanJSON struct {
	Earliest    int `json:"earliest"`
	Latest      int `json:"latest"`
	YearsActive int `json:"yearsActive"`
}

func statsToResponse(st cataloguc.Stats) statsResponse {
	top := make([]genreCountJSON, len(st.TopGenres))
	for i, g := range st.TopGenres {
		top[i] = genreCountJSON{Genre: g.Genre, Count: g.Count}
	}

	var prolific *authorCountJSON
	if st.MostProlific != nil {
		prolific = &authorCountJSON{Name: st.MostProlific.Name, BookCount: st.MostProlific.BookCount}
	}

	return statsResponse{
		Overview: statsOverview{
			TotalAuthors:          st.TotalAuthors,
			TotalBooks:            st.TotalBooks,
			AverageBooksPerAuthor: st.AverageBooksPerAuthor,
		},
		Publication: statsPublication{
			AverageYear: st.AveragePublicationYear,
			Oldest:      bookYearToJSON(st.Oldest),
			Newest:      bookYearToJSON(st.Newest),
		},
		Genres: statsGenres{Total: st.GenreTotal, Top: top},
		Authors: statsAuthorsBlock{
			MostProlific:        prolific,
			AuthorsWithoutBooks: st.AuthorsWithoutBooks,
		},
	}
}

func bookYearToJSON(b *cataloguc.BookYear) *bookYearJSON {
	if b == nil {
		return nil
	}
	return &bookYearJSON{Title: b.Title, Year: b.Year, Author: b.Author}
}

func authorStatToResponse(st cataloguc.AuthorStat) authorStatResponse {
	genres := st.Genres
	if genres == nil {
		genres = []string{}
	}
	books := st.Books
	if books == nil {
		books = []record.Record{}
	}
	var span *spanJSON
	if st.Span != nil {
		span = &spanJSON{Earliest: st.Span.Earliest, Latest: st.Span.Latest, YearsActive: st.Span.YearsActive}
	}
	return authorStatResponse{
		Author:     st.Author,
		TotalBooks: st.TotalBooks,
		Genres:     genres,
		Span:       span,
		Books:      books,
	}
}
