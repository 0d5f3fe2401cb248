package repository

import (
	"context"

	"webshop/internal/domain/entity"
)

type ReviewRepository interface {
	List(ctx context.Context, itemID int64) ([]*entity.Review, error)
	Create(ctx context.Context, itemID int64, review *entity.Review) (*entity.Review, error)
}
