package router

import (
	"github.com/labstack/echo/v4"

	"garrafinha/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	SetupBottleRouter(e, authMiddleware)
	SetupLocationRouter(e, authMiddleware)
	SetupUnlockRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
