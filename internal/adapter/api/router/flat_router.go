package router

import (
	"github.com/labstack/echo/v4"

	"flatnest/internal/adapter/api/handler"
	"flatnest/internal/adapter/api/middleware"
)

func SetupFlatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	flatHandler := handler.GetFlatHandler()

	// Browsing listings is public.
	e.GET("/v1/flats", flatHandler.List)
	e.GET("/v1/flats/:id", flatHandler.GetByID)

	protected := e.Group("/v1/flats")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("", flatHandler.Create)
	protected.PUT("/:id", flatHandler.Update)
	protected.DELETE("/:id", flatHandler.Delete)

	mine := e.Group("/v1/my-flats")
	mine.Use(authMiddleware.Authenticate)

	mine.GET("", flatHandler.ListMine)
}
