package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"webshop/internal/domain/entity"
	"webshop/internal/usecase"
	"webshop/pkg/errors"
	"webshop/pkg/response"
)

type VipHandler struct {
	vipUseCase *usecase.VipUseCase
}

func NewVipHandler(vipUseCase *usecase.VipUseCase) *VipHandler {
	return &VipHandler{
		vipUseCase: vipUseCase,
	}
}

func (h *VipHandler) GetPrice(c echo.Context) error {
	return response.Success(c, h.vipUseCase.Price(c.Request().Context()))
}

func (h *VipHandler) Begin(c echo.Context) error {
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return response.Error(c, err)
	}

	tx, err := h.vipUseCase.Begin(itemID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tx.Status())
}

func (h *VipHandler) GetTransaction(c echo.Context) error {
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return response.Error(c, err)
	}

	tx, ok := h.vipUseCase.Transaction(itemID)
	if !ok {
		return response.Error(c, errors.NotFound("VIP transaction", nil))
	}
	return response.Success(c, tx.Status())
}

// Submit pays for the upgrade. An empty body retries a failed transaction
// with the card already entered.
func (h *VipHandler) Submit(c echo.Context) error {
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return response.Error(c, err)
	}

	var card entity.CardDetails
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&card); err != nil {
			return response.Error(c, err)
		}
	}
	var cardPtr *entity.CardDetails
	if strings.TrimSpace(card.Number+card.Holder+card.Expiry+card.CVV) != "" {
		cardPtr = &card
	}

	tx, err := h.vipUseCase.Submit(c.Request().Context(), itemID, cardPtr)
	if err != nil {
		if tx == nil {
			return response.Error(c, err)
		}
		if appErr, ok := errors.As(err); ok && appErr.Code == errors.CodeVipStepFailed {
			return response.Partial(c, appErr.Status, tx.Status(), appErr)
		}
		return response.Error(c, err)
	}
	return response.Success(c, tx.Status())
}

func (h *VipHandler) Cancel(c echo.Context) error {
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.vipUseCase.Cancel(itemID); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"itemId": itemID, "state": usecase.VipIdle})
}
