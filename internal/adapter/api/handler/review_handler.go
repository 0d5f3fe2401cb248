package handler

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/usecase"
	"webshop/pkg/response"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

func (h *ReviewHandler) GetReviews(c echo.Context) error {
	itemID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	reviews, err := h.reviewUseCase.GetReviews(c.Request().Context(), itemID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, reviews)
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	itemID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	var req usecase.CreateReviewInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	review, err := h.reviewUseCase.CreateReview(c.Request().Context(), itemID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, review)
}
