package paging

import (
	"math"
	"strconv"
	"testing"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate_MiddlePage(t *testing.T) {
	r := Paginate(seq(11), 2, 5)

	if got := r.Items(); len(got) != 5 || got[0] != 5 || got[4] != 9 {
		t.Errorf("Items() = %v, want [5..9]", got)
	}
	if r.Total() != 11 || r.Page() != 2 || r.Limit() != 5 {
		t.Errorf("meta = total %d page %d limit %d", r.Total(), r.Page(), r.Limit())
	}
	if r.TotalPages() != 3 {
		t.Errorf("TotalPages() = %d, want 3", r.TotalPages())
	}
	if !r.HasNext() || !r.HasPrev() {
		t.Errorf("HasNext=%v HasPrev=%v, want true/true", r.HasNext(), r.HasPrev())
	}
}

func TestPaginate_PastEnd(t *testing.T) {
	r := Paginate(seq(11), 100, 10)

	if r.Items() == nil || len(r.Items()) != 0 {
		t.Errorf("Items() = %v, want empty non-nil", r.Items())
	}
	if r.Total() != 11 || r.TotalPages() != 2 {
		t.Errorf("total %d pages %d", r.Total(), r.TotalPages())
	}
	if r.HasNext() {
		t.Error("HasNext() = true")
	}
	if !r.HasPrev() {
		t.Error("HasPrev() = false")
	}
}

func TestPaginate_Empty(t *testing.T) {
	r := Paginate([]string{}, 1, 10)
	if len(r.Items()) != 0 || r.TotalPages() != 0 || r.HasNext() || r.HasPrev() {
		t.Errorf("unexpected %+v", r)
	}
}

func TestPaginate_HugePageDoesNotOverflow(t *testing.T) {
	r := Paginate(seq(3), math.MaxInt, 100)
	if len(r.Items()) != 0 {
		t.Errorf("Items() = %v", r.Items())
	}
}

func TestPaginate_Invariants(t *testing.T) {
	for total := 0; total <= 23; total++ {
		items := seq(total)
		for limit := 1; limit <= 7; limit++ {
			for page := 1; page <= 6; page++ {
				name := strconv.Itoa(total) + "/" + strconv.Itoa(page) + "/" + strconv.Itoa(limit)
				r := Paginate(items, page, limit)

				wantPages := int(math.Ceil(float64(total) / float64(limit)))
				if r.TotalPages() != wantPages {
					t.Errorf("%s: TotalPages() = %d, want %d", name, r.TotalPages(), wantPages)
				}
				wantLen := min(limit, max(0, total-(page-1)*limit))
				if len(r.Items()) != wantLen {
					t.Errorf("%s: len = %d, want %d", name, len(r.Items()), wantLen)
				}
				if r.HasNext() != (page < wantPages) || r.HasPrev() != (page > 1) {
					t.Errorf("%s: HasNext=%v HasPrev=%v", name, r.HasNext(), r.HasPrev())
				}
				if wantLen > 0 && r.Items()[0] != (page-1)*limit {
					t.Errorf("%s: first = %d", name, r.Items()[0])
				}
			}
		}
	}
}

func TestPaginate_DoesNotAlias(t *testing.T) {
	in := seq(4)
	r := Paginate(in, 1, 2)
	r.Items()[0] = 99
	if in[0] != 0 {
		t.Error("page data aliases the input slice")
	}
}

func TestMap(t *testing.T) {
	r := Map(Paginate(seq(11), 2, 5), func(i int) string { return strconv.Itoa(i * 2) })
	if got := r.Items(); len(got) != 5 || got[0] != "10" {
		t.Errorf("Items() = %v", got)
	}
	if r.Total() != 11 || r.Page() != 2 || r.TotalPages() != 3 {
		t.Errorf("metadata not preserved")
	}
}
