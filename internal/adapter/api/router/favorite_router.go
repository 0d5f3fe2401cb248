package router

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/adapter/api/handler"
	"webshop/internal/adapter/api/middleware"
)

func SetupFavoriteRouter(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	favoriteHandler := handler.GetFavoriteHandler()

	favorites := e.Group("/v1/favorites")
	favorites.Use(sessionMiddleware.Authenticate)

	favorites.GET("", favoriteHandler.GetFavorites)
	favorites.POST("/:itemId", favoriteHandler.AddFavorite)
	favorites.DELETE("/:itemId", favoriteHandler.RemoveFavorite)
}
