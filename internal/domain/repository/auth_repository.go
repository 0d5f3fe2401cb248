package repository

import "context"

type AuthRepository interface {
	Register(ctx context.Context, email, password, fullName string) error
	Login(ctx context.Context, email, password string) error
}
