package repository

import "context"

// WarmupRepository wakes a cold-starting backend.
type WarmupRepository interface {
	Ping(ctx context.Context) error
}
