package router

import (
	"github.com/labstack/echo/v4"

	"marketnotify/internal/adapter/api/handler"
	"marketnotify/internal/adapter/api/middleware"
)

// SetupChatRouter sets up conversation and message routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	conversationGroup := e.Group("/v1/conversations")
	conversationGroup.Use(authMiddleware.Authenticate)

	conversationGroup.GET("", chatHandler.GetConversations)            // GET /v1/conversations - List caller's conversations
	conversationGroup.POST("", chatHandler.CreateConversation)        // POST /v1/conversations - Find or create a conversation
	conversationGroup.GET("/:id", chatHandler.GetConversationByID)    // GET /v1/conversations/:id
	conversationGroup.GET("/:id/messages", chatHandler.GetMessages)   // GET /v1/conversations/:id/messages
	conversationGroup.PATCH("/:id/read", chatHandler.MarkConversationRead) // PATCH /v1/conversations/:id/read

	messageGroup := e.Group("/v1/messages")
	messageGroup.Use(authMiddleware.Authenticate)

	messageGroup.POST("", chatHandler.SendMessage)                     // POST /v1/messages - Send a text message
	messageGroup.POST("/with-image", chatHandler.SendMessageWithImage) // POST /v1/messages/with-image - multipart
}
