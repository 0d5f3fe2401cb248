package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
	// Enabled is false when the caller sent neither page nor limit.
	Enabled bool
}

// GetPaginationParams extracts pagination parameters from request
func GetPaginationParams(c echo.Context) PaginationParams {
	rawPage := c.QueryParam("page")
	rawLimit := c.QueryParam("limit")

	page, _ := strconv.Atoi(rawPage)
	pageSize, _ := strconv.Atoi(rawLimit)

	if page <= 0 {
		page = 1
	}

	if pageSize <= 0 || pageSize > 100 {
		pageSize = 24
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
		Enabled:  rawPage != "" || rawLimit != "",
	}
}

// Paginate returns the window of items described by p. Out of range pages are empty.
func Paginate[T any](items []T, p PaginationParams) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
