package router

import (
	"github.com/labstack/echo/v4"

	"marketnotify/internal/adapter/api/handler"
	"marketnotify/internal/adapter/api/middleware"
)

// SetupNotificationRouter sets up notification routes
func SetupNotificationRouter(e *echo.Echo, notificationHandler *handler.NotificationHandler, authMiddleware *middleware.AuthMiddleware) {
	notificationGroup := e.Group("/v1/notifications")
	notificationGroup.Use(authMiddleware.Authenticate)

	notificationGroup.POST("", notificationHandler.CreateNotification)             // POST /v1/notifications
	notificationGroup.GET("", notificationHandler.GetNotifications)                // GET /v1/notifications
	notificationGroup.GET("/unread-count", notificationHandler.GetUnreadCount)     // GET /v1/notifications/unread-count
	notificationGroup.PATCH("/read-all", notificationHandler.MarkAllNotificationsRead) // PATCH /v1/notifications/read-all
	notificationGroup.PATCH("/:id/read", notificationHandler.MarkNotificationRead) // PATCH /v1/notifications/:id/read
}
