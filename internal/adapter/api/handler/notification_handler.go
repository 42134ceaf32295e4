package handler

import (
	"github.com/labstack/echo/v4"

	"marketnotify/internal/usecase"
	"marketnotify/pkg/errors"
	"marketnotify/pkg/response"
	"marketnotify/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

type createNotificationRequest struct {
	UserID  string                 `json:"userId" validate:"required"`
	Type    string                 `json:"type" validate:"required,oneof=order payment product system promotion chat"`
	Title   string                 `json:"title" validate:"required"`
	Message string                 `json:"message" validate:"required"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// CreateNotification is called by other services to push a notification to a
// user. POST /v1/notifications
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req createNotificationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	notification, err := h.notificationUseCase.CreateNotification(c.Request().Context(), usecase.CreateNotificationInput{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
		Data:    req.Data,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, notification)
}

// GetNotifications returns the caller's notifications, optionally filtered by
// read state via ?isRead=true|false. GET /v1/notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	var isRead *bool
	switch c.QueryParam("isRead") {
	case "true":
		v := true
		isRead = &v
	case "false":
		v := false
		isRead = &v
	}

	notifications, total, err := h.notificationUseCase.ListNotifications(c.Request().Context(), userID, isRead, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, notifications, params.Page, params.Limit, total)
}

// GetUnreadCount returns the caller's unread notification count.
// GET /v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID := c.Get("uid").(string)

	count, err := h.notificationUseCase.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"unreadCount": count,
	})
}

// MarkNotificationRead marks one notification as read.
// PATCH /v1/notifications/:id/read
func (h *NotificationHandler) MarkNotificationRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	notification, err := h.notificationUseCase.MarkNotificationRead(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, notification)
}

// MarkAllNotificationsRead marks every unread notification as read.
// PATCH /v1/notifications/read-all
func (h *NotificationHandler) MarkAllNotificationsRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	count, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"markedAsRead": count,
	})
}
