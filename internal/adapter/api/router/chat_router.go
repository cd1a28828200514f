package router

import (
	"github.com/labstack/echo/v4"

	"flatnest/internal/adapter/api/handler"
	"flatnest/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.POST("", chatHandler.GetOrCreate)
	chats.GET("", chatHandler.ListPreviews)
	chats.GET("/:id/messages", chatHandler.ListMessages)
	chats.POST("/:id/messages", chatHandler.SendMessage)
	chats.PUT("/:id/read", chatHandler.MarkAsRead)
}
