package assessment_test

import (
	"strings"
	"testing"

	"disciple-assessment-service/internal/assessment"
)

func TestPaginatePartitionsSequence(t *testing.T) {
	for n := 0; n <= 23; n++ {
		for size := 1; size <= 11; size++ {
			items := makeItems(n)
			pages := assessment.Paginate(items, size)

			if want := (n + size - 1) / size; len(pages) != want {
				t.Fatalf("n=%d size=%d: expected %d pages, got %d", n, size, want, len(pages))
			}
			var joined []string
			for i, page := range pages {
				if i < len(pages)-1 && len(page) != size {
					t.Fatalf("n=%d size=%d: page %d has %d items", n, size, i, len(page))
				}
				if len(page) == 0 || len(page) > size {
					t.Fatalf("n=%d size=%d: page %d has bad length %d", n, size, i, len(page))
				}
				joined = append(joined, ids(page)...)
			}
			if strings.Join(joined, ",") != strings.Join(ids(items), ",") {
				t.Fatalf("n=%d size=%d: concatenation differs", n, size)
			}
		}
	}
}

func TestPaginateEmptyYieldsNoPages(t *testing.T) {
	if pages := assessment.Paginate(nil, 5); len(pages) != 0 {
		t.Fatalf("expected no pages, got %d", len(pages))
	}
}

func TestPaginateDefaultsBadSize(t *testing.T) {
	pages := assessment.Paginate(makeItems(12), 0)
	if len(pages) != 3 || len(pages[0]) != assessment.DefaultPageSize {
		t.Fatalf("expected default page size, got %d pages", len(pages))
	}
}

func TestPagesDoNotShareCapacity(t *testing.T) {
	pages := assessment.Paginate(makeItems(4), 2)
	pages[0] = append(pages[0], makeItems(1)...)
	if pages[1][0].ID != "i2" {
		t.Fatalf("appending to a page overwrote the next page")
	}
}
