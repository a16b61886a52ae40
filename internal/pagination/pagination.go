// Package pagination implements page-number pagination with a
// {count, next, previous, results} envelope.
package pagination

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/RonaldAllanRivera/ride-info/internal/repository"
)

// ErrInvalidPage is returned when the requested page is not a positive
// integer or lies beyond the last page.
var ErrInvalidPage = errors.New("invalid page")

// FallbackSize is the page size used when the configured default is not
// positive.
const FallbackSize = 10

// Query parameter names.
const (
	PageParam     = "page"
	PageSizeParam = "page_size"
)

// Paginator holds the page size policy.
type Paginator struct {
	DefaultSize int
	MaxSize     int
}

// Params is a parsed page request.
type Params struct {
	Number int
	Size   int
}

// Parse reads page and page_size from query. A page_size that is missing,
// malformed or not positive falls back to the default; larger values are
// capped at MaxSize. A non-positive DefaultSize means FallbackSize.
func (p Paginator) Parse(query url.Values) (Params, error) {
	size := p.DefaultSize
	if size <= 0 {
		size = FallbackSize
	}
	if raw := query.Get(PageSizeParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = n
		}
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		size = p.MaxSize
	}

	number := 1
	if raw := query.Get(PageParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Params{}, ErrInvalidPage
		}
		number = n
	}

	return Params{Number: number, Size: size}, nil
}

// Window returns the LIMIT/OFFSET window of the page.
func (p Params) Window() repository.Page {
	return repository.Page{Limit: p.Size, Offset: (p.Number - 1) * p.Size}
}

// Check verifies the page exists for a result set of total rows. Page 1 is
// always valid, even when empty.
func (p Params) Check(total int) error {
	if p.Number == 1 {
		return nil
	}
	if p.Number > lastPage(total, p.Size) {
		return ErrInvalidPage
	}
	return nil
}

func lastPage(total, size int) int {
	if total == 0 || size <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Page is the response envelope of a paginated listing.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the envelope for results. base is the absolute request URL;
// next and previous keep its query string with page replaced, and the link to
// the first page omits page altogether.
func NewPage[T any](base *url.URL, params Params, total int, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}

	page := Page[T]{Count: total, Results: results}
	if params.Number < lastPage(total, params.Size) {
		page.Next = link(base, params.Number+1)
	}
	if params.Number > 1 {
		page.Previous = link(base, params.Number-1)
	}
	return page
}

func link(base *url.URL, number int) *string {
	u := *base
	query := u.Query()
	if number == 1 {
		query.Del(PageParam)
	} else {
		query.Set(PageParam, strconv.Itoa(number))
	}
	u.RawQuery = query.Encode()
	s := u.String()
	return &s
}
