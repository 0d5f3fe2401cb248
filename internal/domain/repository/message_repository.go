package repository

import (
	"context"

	"webshop/internal/domain/entity"
)

type MessageRepository interface {
	Send(ctx context.Context, itemID int64, senderEmail, content string) (*entity.Message, error)
	Sent(ctx context.Context, email string) ([]*entity.Message, error)
	Received(ctx context.Context, email string) ([]*entity.Message, error)
	Answer(ctx context.Context, messageID int64, response string) (*entity.Message, error)
}
