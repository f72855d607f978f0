package router

import (
	"github.com/labstack/echo/v4"

	"garrafinha/internal/adapter/api/handler"
	"garrafinha/internal/adapter/api/middleware"
)

func SetupBottleRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	bottleHandler := handler.GetBottleHandler()

	bottles := e.Group("/v1/bottles")
	bottles.Use(authMiddleware.Authenticate)

	bottles.POST("", bottleHandler.CreateBottle)        // POST /v1/bottles - Drop a new bottle
	bottles.GET("", bottleHandler.ListBottles)          // GET /v1/bottles - List visible bottles
	bottles.GET("/:id", bottleHandler.GetBottle)        // GET /v1/bottles/:id - Read one bottle
	bottles.DELETE("/:id", bottleHandler.DestroyBottle) // DELETE /v1/bottles/:id - Paid destruction
}
