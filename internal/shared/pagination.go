package shared

import (
	"math"
	"net/http"
	"strconv"
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// maxPage keeps (page-1)*perPage within int for any perPage up to 100.
const maxPage = math.MaxInt / 100

// PaginationFromRequest reads page and per_page query parameters.
func PaginationFromRequest(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage > 100 {
		perPage = 100
	}
	if page > maxPage {
		page = maxPage
	}
	return page, perPage
}

// Window returns the [start, end) bounds of the page within total items.
func (p Pagination) Window() (int, int) {
	// Pages past the end start at Total without multiplying, so a huge
	// page number cannot overflow into a negative offset.
	start := p.Total
	if p.Page > 0 && p.Page-1 <= p.Total/max(p.PerPage, 1) {
		start = min((p.Page-1)*p.PerPage, p.Total)
	}
	end := start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}
