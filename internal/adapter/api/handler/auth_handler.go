package handler

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/usecase"
	"webshop/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.RegisterInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.authUseCase.Register(c.Request().Context(), req); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{
		"message": "Registration successful. You can log in now.",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.LoginInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	email, err := h.authUseCase.Login(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"email": email})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.authUseCase.Logout()
	return response.Success(c, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) Session(c echo.Context) error {
	email := h.authUseCase.CurrentUser()
	return response.Success(c, map[string]interface{}{
		"email":    email,
		"loggedIn": email != "",
	})
}
