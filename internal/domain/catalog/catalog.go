// Package catalog defines the bookstore collections served by shelfquery:
// their names, sortable and searchable fields, and the seed data.
package catalog

import "github.com/kailas-cloud/shelfquery/internal/domain/record"

// Collection names.
const (
	Books   = "books"
	Authors = "authors"
)

// Record kinds tagged on global search hits.
const (
	TypeBook   = "book"
	TypeAuthor = "author"
)

// Sortable fields per route.
var (
	BookSortFields   = []string{"id", "title", "publishedYear", "genre", "relevance"}
	AuthorSortFields = []string{"id", "name", "birthYear", "relevance"}
	// AuthorBookSortFields serves the books-by-author listing.
	AuthorBookSortFields = []string{"id", "title", "publishedYear", "genre"}
	GlobalSortFields     = []string{"relevance", "type", "title", "name"}
)

// Searchable and scored fields per collection.
var (
	BookSearchFields       = []string{"title", "genre", "isbn", "author.name"}
	BookScoreFields        = []string{"title", "genre", "author.name"}
	AuthorSearchFields     = []string{"name", "bio"}
	AuthorBookSearchFields = []string{"title", "genre", "isbn"}
)

// BookFilterAliases maps short filter names accepted by book search to
// record paths.
var BookFilterAliases = map[string]string{
	"author": "author.name",
	"year":   "publishedYear",
}

// SeedAuthors returns a fresh copy of the sample authors.
func SeedAuthors() []record.Record {
	return []record.Record{
		author(1, "J.K. Rowling", "British author, best known for the Harry Potter series", 1965),
		author(2, "George Orwell", "English novelist and essayist", 1903),
		author(3, "Frank Herbert", "American science fiction author", 1920),
		author(4, "Jane Austen", "English novelist known for social commentary", 1775),
		{"id": record.Int(5), "name": record.Str("Anonymous")},
	}
}

// SeedBooks returns a fresh copy of the sample books.
func SeedBooks() []record.Record {
	return []record.Record{
		book(1, "Harry Potter and the Philosopher's Stone", 1, 1997, "Fantasy", "978-0747532699"),
		book(2, "Harry Potter and the Chamber of Secrets", 1, 1998, "Fantasy", "978-0747538493"),
		book(3, "1984", 2, 1949, "Dystopian Fiction", "978-0451524935"),
		book(4, "Animal Farm", 2, 1945, "Political Satire", "978-0451526342"),
		book(5, "Dune", 3, 1965, "Science Fiction", "978-0441013593"),
		book(6, "Pride and Prejudice", 4, 1813, "Romance", "978-0141439518"),
		{"id": record.Int(7), "title": record.Str("Emma"), "authorId": record.Int(4)},
	}
}

func author(id int64, name, bio string, birthYear int64) record.Record {
	return record.Record{
		"id":        record.Int(id),
		"name":      record.Str(name),
		"bio":       record.Str(bio),
		"birthYear": record.Int(birthYear),
	}
}

func book(id int64, title string, authorID, year int64, genre, isbn string) record.Record {
	return record.Record{
		"id":            record.Int(id),
		"title":         record.Str(title),
		"authorId":      record.Int(authorID),
		"publishedYear": record.Int(year),
		"genre":         record.Str(genre),
		"isbn":          record.Str(isbn),
	}
}
