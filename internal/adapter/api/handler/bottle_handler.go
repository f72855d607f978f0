package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"garrafinha/internal/usecase"
	"garrafinha/pkg/response"
)

type BottleHandler struct {
	bottleUseCase *usecase.BottleUseCase
}

func NewBottleHandler(bottleUseCase *usecase.BottleUseCase) *BottleHandler {
	return &BottleHandler{
		bottleUseCase: bottleUseCase,
	}
}

type createBottleRequest struct {
	Text      string  `json:"text" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Recipient string  `json:"recipient" validate:"omitempty,email"`
}

// CreateBottle drops a new bottle at the caller's chosen position
func (h *BottleHandler) CreateBottle(c echo.Context) error {
	var req createBottleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	sender := c.Get("email").(string)

	bottle, err := h.bottleUseCase.Create(c.Request().Context(), sender, usecase.CreateBottleInput{
		Text:      req.Text,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Recipient: req.Recipient,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, bottle)
}

// ListBottles returns every bottle the caller may see, annotated with
// readability for their current position and unlock state. While the
// caller is locked the response also carries the viewport clamp bounds.
func (h *BottleHandler) ListBottles(c echo.Context) error {
	viewer := c.Get("email").(string)

	bottles, err := h.bottleUseCase.ListVisible(c.Request().Context(), viewer)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"bottles": bottles,
		"bounds":  h.bottleUseCase.MapBounds(viewer),
	})
}

// GetBottle returns a single bottle if the caller is close enough or
// holds an active unlock session
func (h *BottleHandler) GetBottle(c echo.Context) error {
	bottleID := c.Param("id")
	viewer := c.Get("email").(string)

	bottle, err := h.bottleUseCase.Read(c.Request().Context(), viewer, bottleID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, bottle)
}

// DestroyBottle removes a bottle after a paid destruction purchase
func (h *BottleHandler) DestroyBottle(c echo.Context) error {
	bottleID := c.Param("id")
	userID := c.Get("email").(string)

	if err := h.bottleUseCase.Destroy(c.Request().Context(), userID, bottleID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
