package pagination

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params holds the list parameters extracted from a request.
type Params struct {
	Query    string
	Page     int
	PageSize int
}

// FromContext extracts list parameters from the echo context. Both
// page_size and limit are accepted for the page size; when neither is given
// PageSize is 0 and the list's own default applies.
func FromContext(c echo.Context) Params {
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	if size <= 0 {
		size, _ = strconv.Atoi(c.QueryParam("limit"))
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	if size < 0 {
		size = 0
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return Params{
		Query:    c.QueryParam("q"),
		Page:     page,
		PageSize: size,
	}
}

// NormalizeSize applies the default and the upper bound to a page size.
func NormalizeSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Page is one page of a list that has already been filtered client-side.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// TotalPages returns ceil(n/size).
func TotalPages(n, size int) int {
	size = NormalizeSize(size)
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage keeps page inside [1, last]. An empty list has a single,
// empty first page.
func ClampPage(page, n, size int) int {
	last := TotalPages(n, size)
	if last == 0 {
		return 1
	}
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// Paginate slices items into the requested page. The returned Items never
// alias the input slice.
func Paginate[T any](items []T, page, size int) Page[T] {
	size = NormalizeSize(size)
	n := len(items)
	page = ClampPage(page, n, size)
	total := TotalPages(n, size)

	start := (page - 1) * size
	end := start + size
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}

	out := make([]T, end-start)
	copy(out, items[start:end])

	return Page[T]{
		Items:       out,
		Page:        page,
		PageSize:    size,
		TotalItems:  n,
		TotalPages:  total,
		HasNext:     page < total,
		HasPrevious: page > 1,
	}
}

// Filter keeps the items where any of the fields returned by fields contains
// term, case-insensitively. A blank term returns every item in order.
func Filter[T any](items []T, term string, fields func(T) []string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || fields == nil {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), term) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
