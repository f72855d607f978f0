package router

import (
	"github.com/labstack/echo/v4"

	"garrafinha/internal/adapter/api/handler"
	"garrafinha/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/v1/bottles/:id/chat")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.POST("/join", chatHandler.JoinChat)        // POST /v1/bottles/:id/chat/join - Enter the room
	chatGroup.POST("/messages", chatHandler.SendMessage) // POST /v1/bottles/:id/chat/messages - Send message
	chatGroup.GET("/messages", chatHandler.GetMessages)  // GET /v1/bottles/:id/chat/messages - Room history
}
