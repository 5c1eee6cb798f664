// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// Default page sizes for the list endpoints.
const (
	SellerPageSize = 10
	NGOPageSize    = 20
	MaxPageSize    = 100
)

// MaxPage bounds the page number so Skip cannot overflow.
const MaxPage = math.MaxInt32

// Page is a 1-based offset page.
type Page struct {
	Number int
	Limit  int
}

// Pagination is the page envelope returned with list responses.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

// Parse reads the "page" and "limit" query parameters. Missing or invalid
// values fall back to page 1 and defaultLimit; page is capped at MaxPage and
// limit at MaxPageSize.
func Parse(r *http.Request, defaultLimit int) Page {
	return New(positive(query.Get(r, "page"), 1), positive(query.Get(r, "limit"), defaultLimit))
}

// New builds a Page, clamping out-of-range values.
func New(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if number > MaxPage {
		number = MaxPage
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Page{Number: number, Limit: limit}
}

func positive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Skip is the number of documents to skip for this page.
func (p Page) Skip() int64 { return int64(p.Number-1) * int64(p.Limit) }

// Limit64 is the page size as int64 for Mongo FindOptions.SetLimit.
func (p Page) Limit64() int64 { return int64(p.Limit) }

// Of builds the pagination envelope for total matching documents.
func (p Page) Of(total int64) Pagination {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{Total: total, Page: p.Number, Pages: pages, Limit: p.Limit}
}
