// Package paginator slices ordered result sets into numbered pages.
//
// A requested page that is not a number resolves to the first page and a
// number outside 1..NumPages resolves to the last page, so every request
// yields a renderable page.
package paginator

import (
	"strconv"
	"strings"
)

// DefaultPerPage is the feed page size.
const DefaultPerPage = 10

// Window is the resolved position of a page inside a result set.
type Window struct {
	Number   int
	NumPages int
	Count    int64
	PerPage  int
	Offset   int
	Limit    int
}

// Resolve turns the raw ?page= value into a concrete window over count
// items. An empty result set still has one (empty) page.
func Resolve(count int64, perPage int, raw string) Window {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if count < 0 {
		count = 0
	}

	numPages := int((count + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	offset := (number - 1) * perPage
	limit := perPage
	if rest := int(count) - offset; rest < limit {
		limit = max(rest, 0)
	}

	return Window{
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PerPage:  perPage,
		Offset:   offset,
		Limit:    limit,
	}
}

// Page is one slice of a paginated result set plus navigation metadata.
type Page[T any] struct {
	ObjectList         []T   `json:"object_list"`
	Number             int   `json:"number"`
	NumPages           int   `json:"num_pages"`
	Count              int64 `json:"count"`
	PerPage            int   `json:"per_page"`
	HasNext            bool  `json:"has_next"`
	HasPrevious        bool  `json:"has_previous"`
	NextPageNumber     int   `json:"next_page_number,omitempty"`
	PreviousPageNumber int   `json:"previous_page_number,omitempty"`
	StartIndex         int   `json:"start_index"`
	EndIndex           int   `json:"end_index"`
}

// NewPage wraps items fetched for w.
func NewPage[T any](w Window, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}

	p := Page[T]{
		ObjectList:  items,
		Number:      w.Number,
		NumPages:    w.NumPages,
		Count:       w.Count,
		PerPage:     w.PerPage,
		HasNext:     w.Number < w.NumPages,
		HasPrevious: w.Number > 1,
	}
	if p.HasNext {
		p.NextPageNumber = w.Number + 1
	}
	if p.HasPrevious {
		p.PreviousPageNumber = w.Number - 1
	}

	// 1-based, inclusive; both zero on an empty result set.
	if w.Count > 0 {
		p.StartIndex = w.Offset + 1
		p.EndIndex = w.Offset + len(items)
	}
	return p
}

// Map converts the items of a page while keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.ObjectList))
	for i, item := range p.ObjectList {
		out[i] = fn(item)
	}
	return Page[U]{
		ObjectList:         out,
		Number:             p.Number,
		NumPages:           p.NumPages,
		Count:              p.Count,
		PerPage:            p.PerPage,
		HasNext:            p.HasNext,
		HasPrevious:        p.HasPrevious,
		NextPageNumber:     p.NextPageNumber,
		PreviousPageNumber: p.PreviousPageNumber,
		StartIndex:         p.StartIndex,
		EndIndex:           p.EndIndex,
	}
}
