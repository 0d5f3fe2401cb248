package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	ws "webshop/internal/infrastructure/websocket"
)

type HealthHandler struct {
	wsManager *ws.Manager
	baseURL   string
}

func NewHealthHandler(wsManager *ws.Manager, baseURL string) *HealthHandler {
	return &HealthHandler{
		wsManager: wsManager,
		baseURL:   baseURL,
	}
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"backend":     h.baseURL,
		"subscribers": h.wsManager.ClientCount(),
	})
}
