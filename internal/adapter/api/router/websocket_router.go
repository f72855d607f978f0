package router

import (
	"github.com/labstack/echo/v4"

	"garrafinha/internal/adapter/api/handler"
)

func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// Token authentication happens inside the handler; WebSocket dials
	// cannot always carry an Authorization header.
	e.GET("/v1/ws/bottles/:id/chat", wsHandler.HandleChatStream)
}
