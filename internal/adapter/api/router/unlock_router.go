package router

import (
	"github.com/labstack/echo/v4"

	"garrafinha/internal/adapter/api/handler"
	"garrafinha/internal/adapter/api/middleware"
)

func SetupUnlockRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	unlockHandler := handler.GetUnlockHandler()

	unlock := e.Group("/v1/unlock")
	unlock.Use(authMiddleware.Authenticate)

	unlock.GET("", unlockHandler.GetStatus) // GET /v1/unlock - Session state and clamp bounds
	unlock.POST("", unlockHandler.Unlock)   // POST /v1/unlock - Arm a map movement session
}
