package router

import (
	"github.com/labstack/echo/v4"

	"flatnest/internal/adapter/api/handler"
	"flatnest/internal/adapter/api/middleware"
)

func SetupFavoriteRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	favoriteHandler := handler.GetFavoriteHandler()

	favorites := e.Group("/v1/favorites")
	favorites.Use(authMiddleware.Authenticate)

	favorites.GET("", favoriteHandler.List)
	favorites.POST("/:flatId", favoriteHandler.Add)
	favorites.DELETE("/:flatId", favoriteHandler.Remove)
	favorites.GET("/:flatId", favoriteHandler.Check)
}
