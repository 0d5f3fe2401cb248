package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetPaginationParams(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/v1/listings?page=3&limit=10", nil)
	p := GetPaginationParams(e.NewContext(req, httptest.NewRecorder()))
	assert.Equal(t, PaginationParams{Page: 3, PageSize: 10, Offset: 20, Enabled: true}, p)

	req = httptest.NewRequest(http.MethodGet, "/v1/listings?limit=1000", nil)
	p = GetPaginationParams(e.NewContext(req, httptest.NewRecorder()))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 24, p.PageSize)

	req = httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
	p = GetPaginationParams(e.NewContext(req, httptest.NewRecorder()))
	assert.False(t, p.Enabled)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{3, 4}, Paginate(items, PaginationParams{PageSize: 2, Offset: 2}))
	assert.Equal(t, []int{5}, Paginate(items, PaginationParams{PageSize: 2, Offset: 4}))
	assert.Empty(t, Paginate(items, PaginationParams{PageSize: 2, Offset: 6}))
}
