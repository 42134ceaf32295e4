package router

import (
	"github.com/labstack/echo/v4"

	"marketnotify/internal/adapter/api/handler"
	"marketnotify/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, chatHandler *handler.ChatHandler, notificationHandler *handler.NotificationHandler, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	SetupChatRouter(e, chatHandler, authMiddleware)
	SetupNotificationRouter(e, notificationHandler, authMiddleware)
	SetupWebSocketRouter(e, wsHandler)
	SetupHealthRouter(e)
}
