package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketnotify/internal/infrastructure/identity"
)

func newAuthFixture(t *testing.T) (*AuthMiddleware, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer valid" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("X-User-Id", "user-1")
		w.Header().Set("X-Username", "alice")
		w.Header().Set("X-User-Role", "user")
		w.WriteHeader(http.StatusOK)
	}))
	client := identity.NewClient(server.URL, 2*time.Second, "")
	return NewAuthMiddleware(client), server.Close
}

func TestAuthenticateSetsIdentityOnContext(t *testing.T) {
	mw, cleanup := newAuthFixture(t)
	defer cleanup()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUID, gotUsername string
	handler := mw.Authenticate(func(c echo.Context) error {
		gotUID = c.Get("uid").(string)
		gotUsername = c.Get("username").(string)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, "user-1", gotUID)
	assert.Equal(t, "alice", gotUsername)
}

func TestAuthenticateRejections(t *testing.T) {
	mw, cleanup := newAuthFixture(t)
	defer cleanup()

	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "valid"},
		{"wrong scheme", "Basic valid"},
		{"rejected token", "Bearer stolen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			err := mw.Authenticate(next)(c)
			require.Error(t, err)
			httpErr, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		})
	}
}
