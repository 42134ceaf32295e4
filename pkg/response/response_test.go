package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "marketnotify/pkg/errors"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(1, 20, 0)
	assert.Equal(t, 0, p.Pages)

	p = NewPagination(1, 20, 20)
	assert.Equal(t, 1, p.Pages)

	p = NewPagination(2, 20, 41)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, int64(41), p.Total)
}

func TestErrorMapsAppErrorStatus(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Error(c, apperrors.Forbidden("Access denied to this conversation", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Error(c, assert.AnError)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	// Internal details never leak to the client.
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestPaginatedEnvelope(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Paginated(c, []string{"a", "b"}, 1, 20, 2)
	require.NoError(t, err)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, int64(2), body.Pagination.Total)
	assert.Equal(t, 1, body.Pagination.Pages)
}
