package router

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/adapter/api/handler"
)

func SetupStateRouter(e *echo.Echo, stateHandler *handler.StateHandler) {
	e.GET("/v1/state", stateHandler.GetState)
	e.POST("/v1/warmup", stateHandler.Warmup)
}
