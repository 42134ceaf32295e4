package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketnotify/pkg/errors"
)

func TestVerifyTokenAgainstUserService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/public/verify", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("X-User-Id", "user-1")
		w.Header().Set("X-Username", "alice")
		w.Header().Set("X-User-Role", "user")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second, "")
	ctx := context.Background()

	ident, err := client.VerifyToken(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", ident.UserID)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, "user", ident.Role)

	_, err = client.VerifyToken(ctx, "bad-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestVerifyTokenRejectsEmptyToken(t *testing.T) {
	client := NewClient("http://localhost:0", time.Second, "")

	_, err := client.VerifyToken(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestVerifyTokenRejectsMissingIdentityHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2*time.Second, "")

	_, err := client.VerifyToken(context.Background(), "token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestDevTokenRoundTrip(t *testing.T) {
	token, err := GenerateDevToken("secret", "user-1", "alice", "user", time.Hour)
	require.NoError(t, err)

	// With the dev secret configured the user service is never called.
	client := NewClient("http://localhost:0", time.Second, "secret")
	ident, err := client.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", ident.UserID)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, "user", ident.Role)
}

func TestDevTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateDevToken("secret-a", "user-1", "alice", "user", time.Hour)
	require.NoError(t, err)

	_, err = verifyDevToken(token, "secret-b")
	require.Error(t, err)
}

func TestDevTokenRejectsExpired(t *testing.T) {
	token, err := GenerateDevToken("secret", "user-1", "alice", "user", -time.Minute)
	require.NoError(t, err)

	_, err = verifyDevToken(token, "secret")
	require.Error(t, err)
}
