package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"webshop/internal/usecase"
	"webshop/pkg/response"
)

type MessageHandler struct {
	messageUseCase *usecase.MessageUseCase
	liveUpdates    *usecase.LiveUpdateChannel
}

func NewMessageHandler(messageUseCase *usecase.MessageUseCase, liveUpdates *usecase.LiveUpdateChannel) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
		liveUpdates:    liveUpdates,
	}
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

type answerMessageRequest struct {
	Response string `json:"response" validate:"required,max=1000"`
}

type messageViewRequest struct {
	Active bool `json:"active"`
}

func (h *MessageHandler) SendMessage(c echo.Context) error {
	itemID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.messageUseCase.SendMessage(c.Request().Context(), itemID, req.Content)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, msg)
}

// GetMessages refreshes both lists and returns them. When the refresh fails
// the last known lists are returned with a warning.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	err := h.messageUseCase.RefreshMessages(c.Request().Context())
	sent, received := h.messageUseCase.Messages()
	data := map[string]interface{}{
		"sent":     sent,
		"received": received,
	}
	return response.Partial(c, http.StatusOK, data, asAppError(err))
}

func (h *MessageHandler) AnswerMessage(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	var req answerMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.messageUseCase.AnswerMessage(c.Request().Context(), id, req.Response)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, msg)
}

// SetView tells the live update channel whether the messages view is open.
func (h *MessageHandler) SetView(c echo.Context) error {
	var req messageViewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	h.liveUpdates.SetViewActive(req.Active)
	return response.Success(c, map[string]bool{"live": h.liveUpdates.Active()})
}
