package usecase

import (
	"context"
	"strings"

	"webshop/internal/domain/repository"
	"webshop/internal/domain/session"
	"webshop/internal/domain/store"
	"webshop/internal/domain/validation"
	"webshop/pkg/logger"
)

type AuthUseCase struct {
	authRepo repository.AuthRepository
	session  *session.Session
	store    *store.ViewStore
}

func NewAuthUseCase(authRepo repository.AuthRepository, sess *session.Session, viewStore *store.ViewStore) *AuthUseCase {
	return &AuthUseCase{
		authRepo: authRepo,
		session:  sess,
		store:    viewStore,
	}
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	FullName string `json:"fullName" validate:"required,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates the account. It does not log the user in.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) error {
	input.Email = strings.TrimSpace(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if err := validation.Struct(input); err != nil {
		return err
	}

	if err := uc.authRepo.Register(ctx, input.Email, input.Password, input.FullName); err != nil {
		return err
	}
	logger.Info("registered %s", input.Email)
	return nil
}

// Login verifies the credentials and makes email the session identity.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (string, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validation.Struct(input); err != nil {
		return "", err
	}

	if err := uc.authRepo.Login(ctx, input.Email, input.Password); err != nil {
		return "", err
	}

	previous := uc.session.Email()
	uc.session.Set(input.Email)
	if previous != "" && previous != uc.session.Email() {
		uc.store.ResetUserData()
	}
	logger.Info("logged in as %s", uc.session.Email())
	return uc.session.Email(), nil
}

// Logout clears the identity and every per-user collection.
func (uc *AuthUseCase) Logout() {
	email := uc.session.Email()
	uc.session.Clear()
	uc.store.ResetUserData()
	uc.store.ClearSelection()
	if email != "" {
		logger.Info("logged out %s", email)
	}
}

func (uc *AuthUseCase) CurrentUser() string {
	return uc.session.Email()
}
