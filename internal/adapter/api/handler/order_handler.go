package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"webshop/internal/domain/entity"
	"webshop/internal/usecase"
	"webshop/pkg/response"
)

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

type updateStatusRequest struct {
	Status entity.OrderStatus `json:"status" validate:"required"`
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req usecase.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, order)
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	lists, err := h.orderUseCase.RefreshOrders(c.Request().Context())
	if lists == nil {
		return response.Error(c, err)
	}
	return response.Partial(c, http.StatusOK, lists, asAppError(err))
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, order)
}
