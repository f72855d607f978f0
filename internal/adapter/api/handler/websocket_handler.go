package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"garrafinha/internal/domain/repository"
	"garrafinha/internal/infrastructure/firebase"
	ws "garrafinha/internal/infrastructure/websocket"
	"garrafinha/internal/usecase"
	"garrafinha/pkg/errors"
	"garrafinha/pkg/logger"
	"garrafinha/pkg/response"
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	authClient  *firebase.FirebaseAuthClient
	chatUseCase *usecase.ChatUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authClient *firebase.FirebaseAuthClient, chatUseCase *usecase.ChatUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		authClient:  authClient,
		chatUseCase: chatUseCase,
	}
}

type chatEventPayload struct {
	Type    string      `json:"type"`
	Message interface{} `json:"message"`
}

// HandleChatStream upgrades the connection and streams the bottle's chat
// events to the caller. Browsers cannot set headers on WebSocket dials,
// so the ID token also rides a "token" query parameter.
func (h *WebSocketHandler) HandleChatStream(c echo.Context) error {
	bottleID := c.Param("id")

	userID, err := h.authenticate(c)
	if err != nil {
		return response.Error(c, err)
	}

	// Subscribe before upgrading so membership failures still map to
	// plain HTTP status codes.
	ctx, cancel := context.WithCancel(context.Background())
	events, err := h.chatUseCase.Subscribe(ctx, userID, bottleID)
	if err != nil {
		cancel()
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		cancel()
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID:   userID,
		BottleID: bottleID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		// Disconnects must tear down the subscription right away, not on
		// the next event.
		OnClose: cancel,
	}

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()
	go h.stream(cancel, events, client)

	return nil
}

// stream bridges subscription events onto the client's send channel until
// either side goes away.
func (h *WebSocketHandler) stream(cancel context.CancelFunc, events <-chan repository.ChatEvent, client *ws.Client) {
	defer cancel()

	for ev := range events {
		payload, err := json.Marshal(chatEventPayload{
			Type:    ev.Type.String(),
			Message: ev.Message,
		})
		if err != nil {
			logger.Error("Failed to encode chat event: %v", err)
			continue
		}
		if !h.wsManager.SendToClient(client, payload) {
			return
		}
	}
}

func (h *WebSocketHandler) authenticate(c echo.Context) (string, error) {
	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		return "", errors.Unauthorized("Authentication required", nil)
	}

	ctx := c.Request().Context()

	uid, err := h.authClient.VerifyToken(ctx, token)
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}

	email, err := h.authClient.UserEmail(ctx, uid)
	if err != nil {
		return "", errors.Unauthorized("Failed to resolve user account", err)
	}
	return email, nil
}
