package router

import (
	"github.com/labstack/echo/v4"

	"flatnest/internal/adapter/api/handler"
)

// SetupWebSocketRouter mounts the live chat endpoint. Authentication happens
// inside the handler, off the token query parameter.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws/chat", wsHandler.HandleWebSocket)
}
