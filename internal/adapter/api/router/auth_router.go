package router

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/adapter/api/handler"
	"webshop/internal/adapter/api/middleware"
)

// SetupAuthRouter initializes auth routes
func SetupAuthRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	authHandler := handler.GetAuthHandler()

	e.POST("/v1/auth/register", authHandler.Register)
	e.POST("/v1/auth/login", authHandler.Login)
	e.GET("/v1/auth/session", authHandler.Session)

	protected := e.Group("/v1/auth")
	protected.Use(sessionMiddleware.Authenticate)

	protected.POST("/logout", authHandler.Logout)
}
