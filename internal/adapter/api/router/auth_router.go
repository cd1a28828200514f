package router

import (
	"github.com/labstack/echo/v4"

	"flatnest/internal/adapter/api/handler"
	"flatnest/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	e.POST("/v1/auth/register", authHandler.Register)

	protected := e.Group("/v1/auth")
	protected.Use(authMiddleware.Authenticate)

	protected.DELETE("/account", authHandler.DeleteAccount)
}
