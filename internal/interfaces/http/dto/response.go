package dto

import "github.com/bizledger/backend/internal/domain/shared"

// Response represents a standard API response
type Response struct {
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the page a list response holds
type Pagination struct {
	Total      int64 `json:"total" example:"42"`
	Page       int   `json:"page" example:"1"`
	PageSize   int   `json:"pageSize" example:"20"`
	TotalPages int   `json:"totalPages" example:"3"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{Data: data}
}

// NewPageResponse creates a list response from a page
func NewPageResponse[T any](page shared.Paginated[T]) Response {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return Response{
		Data: items,
		Pagination: &Pagination{
			Total:      page.Total,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalPages: page.TotalPages,
		},
	}
}

// ListRequest represents common list/pagination request parameters.
// limit is accepted as an alias of pageSize.
type ListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Limit    int    `form:"limit"`
	Sort     string `form:"sort"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search   string `form:"search" binding:"max=200"`
}

// Filter converts the request into a normalized repository filter
func (r ListRequest) Filter() shared.Filter {
	f := shared.DefaultFilter()
	if r.Page > 0 {
		f.Page = r.Page
	}
	switch {
	case r.PageSize > 0:
		f.PageSize = r.PageSize
	case r.Limit > 0:
		f.PageSize = r.Limit
	}
	if r.Sort != "" {
		f.OrderBy = r.Sort
	}
	if r.Order != "" {
		f.OrderDir = r.Order
	}
	f.Search = r.Search
	return f.Normalize()
}
