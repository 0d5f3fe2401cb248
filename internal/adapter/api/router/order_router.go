package router

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/adapter/api/handler"
	"webshop/internal/adapter/api/middleware"
)

func SetupOrderRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	orderHandler := handler.GetOrderHandler()

	orders := e.Group("/v1/orders")
	orders.Use(sessionMiddleware.Authenticate)

	orders.GET("", orderHandler.GetOrders)
	orders.POST("", orderHandler.CreateOrder)
	orders.PUT("/:id/status", orderHandler.UpdateStatus)
}
