// Package paginate slices month groups into fixed-size pages.
package paginate

// DefaultPageSize is the number of month cards per page.
const DefaultPageSize = 3

type Page[T any] struct {
	Items      []T  `json:"items"`
	Number     int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	PageSize   int  `json:"pageSize"`
	TotalItems int  `json:"totalItems"`
	Clamped    bool `json:"clamped"`
}

// TotalPages is never below 1 so an empty result is still "page 1 of 1".
func TotalPages(length, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if length <= 0 {
		return 1
	}
	return (length + pageSize - 1) / pageSize
}

// Paginate returns the requested page. A page past the end is clamped to the
// last page and reported through Clamped; pages below 1 become 1.
func Paginate[T any](items []T, pageSize, currentPage int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(items), pageSize)

	p := Page[T]{Number: currentPage, TotalPages: total, PageSize: pageSize, TotalItems: len(items)}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > total {
		p.Number = total
		p.Clamped = true
	}

	start := (p.Number - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	p.Items = make([]T, end-start)
	copy(p.Items, items[start:end])
	return p
}

// State remembers the current page between requests of one view.
type State struct {
	Page      int
	filterKey string
	seen      bool
}

// Resolve picks the page to show. A changed filter key resets to page 1; a
// shrunken result clamps to the last page.
func (s *State) Resolve(filterKey string, length, pageSize, requested int) int {
	switch {
	case s.seen && s.filterKey != filterKey:
		s.Page = 1
	case requested > 0:
		s.Page = requested
	}
	s.filterKey, s.seen = filterKey, true
	if s.Page < 1 {
		s.Page = 1
	}
	if total := TotalPages(length, pageSize); s.Page > total {
		s.Page = total
	}
	return s.Page
}
