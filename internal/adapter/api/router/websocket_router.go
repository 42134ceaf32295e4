package router

import (
	"github.com/labstack/echo/v4"

	"marketnotify/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// No auth middleware here; the handler verifies the token itself
	// before upgrading the connection.
	e.GET("/ws", wsHandler.HandleWebSocket)
}
