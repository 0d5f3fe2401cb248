package usecase

import (
	"context"
	"time"

	"webshop/internal/infrastructure/imaging"
)

type ImageCompressor interface {
	HardCap() int64
	CheckSize(in imaging.ImageFile) error
	Compress(ctx context.Context, in imaging.ImageFile, budget int64) (*imaging.Compressed, error)
}

// PushListener blocks on a push subscription until ctx is done, calling
// onMessage for every notification.
type PushListener interface {
	Listen(ctx context.Context, destination string, onMessage func())
}

type RateLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}
