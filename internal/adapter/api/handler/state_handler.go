package handler

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/domain/session"
	"webshop/internal/domain/store"
	"webshop/internal/usecase"
	"webshop/pkg/response"
)

type StateHandler struct {
	store         *store.ViewStore
	session       *session.Session
	warmupUseCase *usecase.WarmupUseCase
}

func NewStateHandler(viewStore *store.ViewStore, sess *session.Session, warmupUseCase *usecase.WarmupUseCase) *StateHandler {
	return &StateHandler{
		store:         viewStore,
		session:       sess,
		warmupUseCase: warmupUseCase,
	}
}

type stateResponse struct {
	Email string `json:"email"`
	store.Snapshot
}

// GetState returns everything the views currently show.
func (h *StateHandler) GetState(c echo.Context) error {
	return response.Success(c, stateResponse{
		Email:    h.session.Email(),
		Snapshot: h.store.Snapshot(),
	})
}

func (h *StateHandler) Warmup(c echo.Context) error {
	sent, ok := h.warmupUseCase.Warmup(c.Request().Context())
	return response.Success(c, map[string]bool{
		"sent":      sent,
		"reachable": ok,
	})
}
