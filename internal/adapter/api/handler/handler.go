package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"webshop/internal/usecase"
	"webshop/pkg/errors"
)

var (
	authHandler     *AuthHandler
	listingHandler  *ListingHandler
	reviewHandler   *ReviewHandler
	messageHandler  *MessageHandler
	favoriteHandler *FavoriteHandler
	orderHandler    *OrderHandler
	vipHandler      *VipHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	listingUseCase *usecase.ListingUseCase,
	reviewUseCase *usecase.ReviewUseCase,
	messageUseCase *usecase.MessageUseCase,
	liveUpdates *usecase.LiveUpdateChannel,
	favoriteUseCase *usecase.FavoriteUseCase,
	orderUseCase *usecase.OrderUseCase,
	vipUseCase *usecase.VipUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	listingHandler = NewListingHandler(listingUseCase)
	reviewHandler = NewReviewHandler(reviewUseCase)
	messageHandler = NewMessageHandler(messageUseCase, liveUpdates)
	favoriteHandler = NewFavoriteHandler(favoriteUseCase)
	orderHandler = NewOrderHandler(orderUseCase)
	vipHandler = NewVipHandler(vipUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}

func GetMessageHandler() *MessageHandler {
	return messageHandler
}

func GetFavoriteHandler() *FavoriteHandler {
	return favoriteHandler
}

func GetOrderHandler() *OrderHandler {
	return orderHandler
}

func GetVipHandler() *VipHandler {
	return vipHandler
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ValidationFailed(name, "Invalid "+name)
	}
	return id, nil
}

// asAppError turns a background failure into a warning for a partial response.
func asAppError(err error) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	return errors.Internal("Refresh failed", err)
}
