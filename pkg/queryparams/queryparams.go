package queryparams

import (
	"math"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ListParams is bound from the query string of every admin list page.
type ListParams struct {
	Page      int    `query:"page"`
	PerPage   int    `query:"per_page"`
	SortBy    string `query:"sort_by"`
	OrderBy   string `query:"order_by"`
	Search    string `query:"search"`
	Status    string `query:"status"`
	Plan      string `query:"plan"`
	Type      string `query:"type"`
	Category  string `query:"category"`
	defaultBy string
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

func (m PaginationMeta) HasPrev() bool { return m.CurrentPage > 1 }
func (m PaginationMeta) HasNext() bool { return m.CurrentPage < m.TotalPages }
func (m PaginationMeta) PrevPage() int { return m.CurrentPage - 1 }
func (m PaginationMeta) NextPage() int { return m.CurrentPage + 1 }

type PaginatedResult struct {
	Data any            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

func DefaultListParams(defaultSortBy string) ListParams {
	return ListParams{
		Page:      DefaultPage,
		PerPage:   DefaultPerPage,
		SortBy:    defaultSortBy,
		OrderBy:   "desc",
		defaultBy: defaultSortBy,
	}
}

// Validate clamps paging values and drops a sort column not present in allowedSort.
func (p *ListParams) Validate(allowedSort ...string) {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	p.OrderBy = strings.ToLower(p.OrderBy)
	if p.OrderBy != "asc" && p.OrderBy != "desc" {
		p.OrderBy = "desc"
	}
	p.Search = strings.TrimSpace(p.Search)
	if len(allowedSort) > 0 {
		ok := false
		for _, s := range allowedSort {
			if p.SortBy == s {
				ok = true
				break
			}
		}
		if !ok {
			p.SortBy = p.defaultBy
			if p.SortBy == "" {
				p.SortBy = allowedSort[0]
			}
		}
	}
}

func (p ListParams) CalculateOffset() int {
	return (p.Page - 1) * p.PerPage
}

// OrderClause is safe to pass to gorm Order only after Validate with an allow-list.
func (p ListParams) OrderClause() string {
	return p.SortBy + " " + p.OrderBy
}

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(perPage)))
}

func NewPaginatedResult(data any, p ListParams, total int64) *PaginatedResult {
	return &PaginatedResult{
		Data: data,
		Meta: PaginationMeta{
			CurrentPage: p.Page,
			PerPage:     p.PerPage,
			TotalItems:  total,
			TotalPages:  CalculateTotalPages(total, p.PerPage),
		},
	}
}
