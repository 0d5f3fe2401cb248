package repository

import (
	"context"

	"webshop/internal/domain/entity"
)

type FavoriteRepository interface {
	List(ctx context.Context, email string) ([]*entity.Favorite, error)
	Add(ctx context.Context, email string, itemID int64) (*entity.Favorite, error)
	Remove(ctx context.Context, email string, itemID int64) error
}
