package router

import (
	"github.com/labstack/echo/v4"

	"garrafinha/internal/adapter/api/handler"
	"garrafinha/internal/adapter/api/middleware"
)

func SetupLocationRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	locationHandler := handler.GetLocationHandler()

	locations := e.Group("/v1/location")
	locations.Use(authMiddleware.Authenticate)

	locations.POST("", locationHandler.ReportLocation)   // POST /v1/location - Report current position
	locations.GET("", locationHandler.GetLocation)       // GET /v1/location - Last known position
	locations.DELETE("", locationHandler.RevokeLocation) // DELETE /v1/location - Withdraw sharing
}
