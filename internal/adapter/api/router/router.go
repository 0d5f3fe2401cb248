package router

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, sessionMiddleware *middleware.SessionMiddleware) {
	SetupAuthRouter(e, sessionMiddleware)
	SetupListingRouter(e, sessionMiddleware)
	SetupReviewRouter(e, sessionMiddleware)
	SetupMessageRouter(e, sessionMiddleware)
	SetupFavoriteRouter(e, sessionMiddleware)
	SetupOrderRouter(e, sessionMiddleware)
	SetupVipRouter(e, sessionMiddleware)
}
