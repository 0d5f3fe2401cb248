package handler

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/usecase"
	"webshop/pkg/response"
)

type FavoriteHandler struct {
	favoriteUseCase *usecase.FavoriteUseCase
}

func NewFavoriteHandler(favoriteUseCase *usecase.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteUseCase: favoriteUseCase,
	}
}

func (h *FavoriteHandler) GetFavorites(c echo.Context) error {
	return response.Success(c, h.favoriteUseCase.LoadFavorites(c.Request().Context()))
}

func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return response.Error(c, err)
	}

	favorite, err := h.favoriteUseCase.AddFavorite(c.Request().Context(), itemID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, map[string]interface{}{
		"itemId":   itemID,
		"favorite": favorite,
	})
}

func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.favoriteUseCase.RemoveFavorite(c.Request().Context(), itemID); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"itemId": itemID})
}
