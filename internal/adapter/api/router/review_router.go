package router

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/adapter/api/handler"
	"webshop/internal/adapter/api/middleware"
)

func SetupReviewRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	reviewHandler := handler.GetReviewHandler()

	e.GET("/v1/listings/:id/reviews", reviewHandler.GetReviews)
	e.POST("/v1/listings/:id/reviews", reviewHandler.CreateReview, sessionMiddleware.Authenticate)
}
