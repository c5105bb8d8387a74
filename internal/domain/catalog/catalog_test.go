package catalog

import (
	"slices"
	"testing"
)

func TestSeedData_UniqueIDs(t *testing.T) {
	for name, recs := range map[string]int{"books": len(SeedBooks()), "authors": len(SeedAuthors())} {
		if recs == 0 {
			t.Errorf("%s: empty seed", name)
		}
	}

	seen := map[string]bool{}
	for _, b := range SeedBooks() {
		id := b.Resolve("id").Text()
		if seen[id] {
			t.Errorf("duplicate book id %s", id)
		}
		seen[id] = true
	}
}

func TestSeedBooks_ReferenceKnownAuthors(t *testing.T) {
	authors := map[string]bool{}
	for _, a := range SeedAuthors() {
		authors[a.Resolve("id").Text()] = true
	}
	for _, b := range SeedBooks() {
		if ref := b.Resolve("authorId").Text(); !authors[ref] {
			t.Errorf("book %s references unknown author %s", b.Resolve("id").Text(), ref)
		}
	}
}

func TestSeed_ReturnsFreshCopies(t *testing.T) {
	a := SeedBooks()
	delete(a[0], "title")
	if SeedBooks()[0].Resolve("title").IsMissing() {
		t.Error("seed data shared between calls")
	}
}

func TestSortFields_IncludeRelevance(t *testing.T) {
	for name, fields := range map[string][]string{
		"books":   BookSortFields,
		"authors": AuthorSortFields,
		"global":  GlobalSortFields,
	} {
		if !slices.Contains(fields, "relevance") {
			t.Errorf("%s sort fields lack relevance", name)
		}
	}
	if slices.Contains(AuthorBookSortFields, "relevance") {
		t.Error("author books listing should not sort by relevance")
	}
}
