package identity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"marketnotify/pkg/errors"
)

// Identity is the caller information returned by the user service.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// Client verifies bearer tokens against the external user service. The user
// service replies with the caller's identity and role in response headers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	devSecret  string
}

// NewClient builds an identity client. The HTTP timeout bounds every
// verification, including the one performed during WebSocket handshakes; an
// unresponsive user service results in a refused connection, never a pending
// session. When devSecret is non-empty, locally signed development tokens are
// accepted without calling the user service.
func NewClient(baseURL string, timeout time.Duration, devSecret string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		devSecret: devSecret,
	}
}

// VerifyToken validates the token and resolves the caller's identity.
func (c *Client) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errors.Unauthorized("Authentication token is required", nil)
	}

	if c.devSecret != "" {
		if ident, err := verifyDevToken(token, c.devSecret); err == nil {
			return ident, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/user/public/verify", nil)
	if err != nil {
		return nil, errors.Internal("Failed to build verification request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Unauthorized("Token verification failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Unauthorized(
			fmt.Sprintf("Token verification failed: %d", resp.StatusCode),
			fmt.Errorf("user service: %s", string(body)),
		)
	}

	ident := &Identity{
		UserID:   resp.Header.Get("X-User-Id"),
		Username: resp.Header.Get("X-Username"),
		Role:     resp.Header.Get("X-User-Role"),
	}
	if ident.UserID == "" {
		return nil, errors.Unauthorized("Token verification failed: missing user identity", nil)
	}

	return ident, nil
}
