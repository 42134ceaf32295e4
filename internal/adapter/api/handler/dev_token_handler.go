package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"marketnotify/internal/infrastructure/identity"
	"marketnotify/pkg/errors"
	"marketnotify/pkg/response"
)

// DevTokenHandler mints long-lived signed tokens for local testing, so the
// service can be exercised without a running identity service.
type DevTokenHandler struct {
	secret string
}

var devTokenHandler *DevTokenHandler

func SetupDevTokenHandler(secret string) {
	devTokenHandler = &DevTokenHandler{secret: secret}
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

func (h *DevTokenHandler) GenerateToken(c echo.Context) error {
	if h.secret == "" {
		return response.Error(c, errors.Internal("Dev token secret is not configured", nil))
	}

	userID := c.QueryParam("userId")
	if userID == "" {
		userID = uuid.New().String()
	}
	username := c.QueryParam("username")
	if username == "" {
		username = "dev-user"
	}
	role := c.QueryParam("role")
	if role == "" {
		role = "user"
	}

	token, err := identity.GenerateDevToken(h.secret, userID, username, role, 24*time.Hour)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to generate token", err))
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       userID,
			"username": username,
			"role":     role,
		},
	})
}
