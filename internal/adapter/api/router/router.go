package router

import (
	"github.com/labstack/echo/v4"

	"flatnest/internal/adapter/api/middleware"
	"flatnest/internal/observability"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	SetupAuthRouter(e, authMiddleware)
	SetupUserRouter(e, authMiddleware, adminMiddleware)
	SetupFlatRouter(e, authMiddleware)
	SetupFavoriteRouter(e, authMiddleware)
	SetupChatRouter(e, authMiddleware)
	SetupHealthRouter(e)

	e.GET("/metrics", observability.MetricsHandler())
}
