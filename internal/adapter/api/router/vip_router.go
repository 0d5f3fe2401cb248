package router

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/adapter/api/handler"
	"webshop/internal/adapter/api/middleware"
)

func SetupVipRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	vipHandler := handler.GetVipHandler()

	e.GET("/v1/vip/price", vipHandler.GetPrice)

	vip := e.Group("/v1/vip")
	vip.Use(sessionMiddleware.Authenticate)

	vip.POST("/:itemId", vipHandler.Begin)
	vip.GET("/:itemId", vipHandler.GetTransaction)
	vip.POST("/:itemId/payment", vipHandler.Submit)
	vip.DELETE("/:itemId", vipHandler.Cancel)
}
