package router

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/adapter/api/handler"
	"webshop/internal/adapter/api/middleware"
)

func SetupMessageRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	messageHandler := handler.GetMessageHandler()

	// The view flag is kept across logins.
	e.PUT("/v1/messages/view", messageHandler.SetView)

	e.POST("/v1/listings/:id/messages", messageHandler.SendMessage, sessionMiddleware.Authenticate)
	e.GET("/v1/messages", messageHandler.GetMessages, sessionMiddleware.Authenticate)
	e.PUT("/v1/messages/:id/response", messageHandler.AnswerMessage, sessionMiddleware.Authenticate)
}
