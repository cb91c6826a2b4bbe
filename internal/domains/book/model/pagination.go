package model

import "math"

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
)

// PageRequest - pageNumber/pageSize đã được clamp
type PageRequest struct {
	PageNumber int
	PageSize   int
}

// NewPageRequest: giá trị < 1 quay về default thay vì báo lỗi
func NewPageRequest(pageNumber, pageSize int) PageRequest {
	if pageNumber < 1 {
		pageNumber = DefaultPageNumber
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return PageRequest{PageNumber: pageNumber, PageSize: pageSize}
}

// Offset = (pageNumber-1) * pageSize, bão hòa ở math.MaxInt thay vì overflow
func (p PageRequest) Offset() int {
	if p.PageNumber <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.PageNumber-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.PageNumber - 1) * p.PageSize
}

// PagedResponse là body của list và ranking
type PagedResponse[T any] struct {
	PageNumber   int `json:"pageNumber"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
	Data         []T `json:"data"`
}
