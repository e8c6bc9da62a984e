package assessment

import "disciple-assessment-service/internal/domain"

// DefaultPageSize is the number of items shown per page.
const DefaultPageSize = 5

// Paginate splits items into ceil(len/size) ordered pages. Every page but the
// last holds exactly size items; an empty input yields no pages. A size below
// one falls back to DefaultPageSize.
func Paginate(items []domain.Item, size int) [][]domain.Item {
	if size < 1 {
		size = DefaultPageSize
	}
	if len(items) == 0 {
		return nil
	}
	pages := make([][]domain.Item, 0, PageCount(len(items), size))
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, items[start:end:end])
	}
	return pages
}

// PageCount is ceil(n/size).
func PageCount(n, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	return (n + size - 1) / size
}
