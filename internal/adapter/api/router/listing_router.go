package router

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/adapter/api/handler"
	"webshop/internal/adapter/api/middleware"
)

func SetupListingRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	listingHandler := handler.GetListingHandler()

	listings := e.Group("/v1/listings")
	listings.GET("", listingHandler.ListListings)
	listings.GET("/defaults", listingHandler.GetDefaults)
	listings.GET("/:id", listingHandler.GetListing)

	owner := e.Group("/v1/listings")
	owner.Use(sessionMiddleware.Authenticate)

	owner.POST("", listingHandler.CreateListing)
	owner.DELETE("/:id", listingHandler.DeleteListing)
	owner.POST("/:id/image", listingHandler.UploadImage)
}
