package handler

import (
	"github.com/labstack/echo/v4"

	"garrafinha/internal/usecase"
	"garrafinha/pkg/response"
)

type UnlockHandler struct {
	unlockUseCase *usecase.UnlockUseCase
}

func NewUnlockHandler(unlockUseCase *usecase.UnlockUseCase) *UnlockHandler {
	return &UnlockHandler{
		unlockUseCase: unlockUseCase,
	}
}

// GetStatus returns the caller's unlock state and, while locked, the
// viewport bounds clamped around their last known position
func (h *UnlockHandler) GetStatus(c echo.Context) error {
	userID := c.Get("email").(string)

	return response.Success(c, h.unlockUseCase.Status(c.Request().Context(), userID))
}

// Unlock arms a map movement session, purchasing the entitlement first
// when the caller does not hold it yet
func (h *UnlockHandler) Unlock(c echo.Context) error {
	userID := c.Get("email").(string)

	status, err := h.unlockUseCase.Unlock(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, status)
}
