// internal/utils/pagination.go
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// PageParams is a 1-based page window read from ?page=&limit=.
type PageParams struct {
	Page  int
	Limit int
}

// Page is one window of a newest-first feed.
type Page struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	HasMore    bool        `json:"has_more"`
	Data       interface{} `json:"data"`
}

// GetPageParams clamps bad or oversized values to the defaults.
func GetPageParams(c *gin.Context) PageParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return PageParams{Page: page, Limit: limit}
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func NewPage(data interface{}, total int64, params PageParams) Page {
	limit := int64(params.Limit)
	if limit < 1 {
		limit = DefaultPageSize
	}
	totalPages := int((total + limit - 1) / limit)
	return Page{
		Page:       params.Page,
		Limit:      int(limit),
		Total:      total,
		TotalPages: totalPages,
		HasMore:    params.Page < totalPages,
		Data:       data,
	}
}

func SetPaginationHeaders(c *gin.Context, page Page) {
	c.Header("X-Total-Count", strconv.FormatInt(page.Total, 10))
	c.Header("X-Page", strconv.Itoa(page.Page))
	c.Header("X-Per-Page", strconv.Itoa(page.Limit))
	c.Header("X-Total-Pages", strconv.Itoa(page.TotalPages))
}
