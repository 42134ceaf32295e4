package handler

import (
	"github.com/labstack/echo/v4"

	"marketnotify/internal/infrastructure/storage"
	"marketnotify/internal/usecase"
	"marketnotify/pkg/errors"
	"marketnotify/pkg/response"
	"marketnotify/pkg/utils"
)

type ChatHandler struct {
	chatUseCase   *usecase.ChatUseCase
	storageClient *storage.CloudStorageClient
	maxImageSize  int64
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, storageClient *storage.CloudStorageClient, maxImageSize int64) *ChatHandler {
	return &ChatHandler{
		chatUseCase:   chatUseCase,
		storageClient: storageClient,
		maxImageSize:  maxImageSize,
	}
}

type createConversationRequest struct {
	SellerID string `json:"sellerId"`
	UserID   string `json:"userId"`
}

type sendMessageRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
	Content        string `json:"content" validate:"required"`
	Image          string `json:"image,omitempty" validate:"omitempty,url"`
}

// GetConversations returns the caller's conversations sorted by last update.
// GET /v1/conversations
func (h *ChatHandler) GetConversations(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	conversations, total, err := h.chatUseCase.ListConversations(c.Request().Context(), userID, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, conversations, params.Page, params.Limit, total)
}

// CreateConversation resolves or creates the conversation with the given
// counterparty. POST /v1/conversations
func (h *ChatHandler) CreateConversation(c echo.Context) error {
	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	userID := c.Get("uid").(string)

	conversation, err := h.chatUseCase.ResolveConversation(c.Request().Context(), userID, usecase.ResolveConversationInput{
		SellerID:   req.SellerID,
		CustomerID: req.UserID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

// GetConversationByID returns one conversation. GET /v1/conversations/:id
func (h *ChatHandler) GetConversationByID(c echo.Context) error {
	userID := c.Get("uid").(string)

	conversation, err := h.chatUseCase.GetConversation(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

// GetMessages returns one page of messages in chronological order.
// GET /v1/conversations/:id/messages
func (h *ChatHandler) GetMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	messages, total, err := h.chatUseCase.GetMessages(c.Request().Context(), userID, c.Param("id"), params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, params.Page, params.Limit, total)
}

// SendMessage is the HTTP fallback for clients without a live connection; it
// runs the same delivery decision as the socket path. POST /v1/messages
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ConversationID: req.ConversationID,
		Content:        req.Content,
		Image:          req.Image,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// SendMessageWithImage accepts a multipart message with an image attachment.
// The image part is size-capped and restricted to image content types.
// POST /v1/messages/with-image
func (h *ChatHandler) SendMessageWithImage(c echo.Context) error {
	userID := c.Get("uid").(string)

	conversationID := c.FormValue("conversationId")
	content := c.FormValue("content")

	file, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid image", err))
	}

	if file.Size > h.maxImageSize {
		return response.Error(c, errors.BadRequest("Image size exceeds maximum allowed", nil))
	}

	contentType := file.Header.Get("Content-Type")

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read image", err))
	}
	defer src.Close()

	imageURL, err := h.storageClient.UploadImage(c.Request().Context(), src, contentType, "chat")
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to upload image", err))
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ConversationID: conversationID,
		Content:        content,
		Image:          imageURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// MarkConversationRead marks all counterpart messages as read.
// PATCH /v1/conversations/:id/read
func (h *ChatHandler) MarkConversationRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	count, err := h.chatUseCase.MarkConversationRead(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"messagesMarkedAsRead": count,
	})
}
