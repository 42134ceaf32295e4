package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, 1, 20, 0},
		{"negative page", -3, 10, 1, 10, 0},
		{"zero page", 0, 10, 1, 10, 0},
		{"limit above cap", 2, 1000, 2, 100, 100},
		{"limit at cap", 1, 100, 1, 100, 0},
		{"normal", 3, 25, 3, 25, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := NormalizePagination(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOffset, params.Offset)
		})
	}
}

func TestGetPaginationParams(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?page=0&limit=1000", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	params := GetPaginationParams(c)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, MaxLimit, params.Limit)

	// Garbage values fall back to the defaults.
	req = httptest.NewRequest(http.MethodGet, "/?page=abc&limit=xyz", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	params = GetPaginationParams(c)
	assert.Equal(t, DefaultPage, params.Page)
	assert.Equal(t, DefaultLimit, params.Limit)
}
