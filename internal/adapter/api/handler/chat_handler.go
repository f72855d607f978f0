package handler

import (
	"github.com/labstack/echo/v4"

	"garrafinha/internal/usecase"
	"garrafinha/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// JoinChat admits the caller into the bottle's chat room
func (h *ChatHandler) JoinChat(c echo.Context) error {
	bottleID := c.Param("id")
	userID := c.Get("email").(string)

	result, err := h.chatUseCase.Join(c.Request().Context(), userID, bottleID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

// SendMessage posts a message to the bottle's chat room
func (h *ChatHandler) SendMessage(c echo.Context) error {
	bottleID := c.Param("id")
	userID := c.Get("email").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, bottleID, req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetMessages returns the room's history oldest first
func (h *ChatHandler) GetMessages(c echo.Context) error {
	bottleID := c.Param("id")
	userID := c.Get("email").(string)

	messages, err := h.chatUseCase.History(c.Request().Context(), userID, bottleID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}
