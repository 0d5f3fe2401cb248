package router

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/adapter/api/handler"
)

// SetupWebSocketRouter exposes store change events to connected views.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
