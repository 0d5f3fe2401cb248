package usecase

import (
	"context"

	"webshop/internal/domain/repository"
	"webshop/internal/infrastructure/ratelimit"
	"webshop/pkg/logger"
)

// WarmupUseCase wakes a sleeping backend before the user needs it.
type WarmupUseCase struct {
	warmupRepo repository.WarmupRepository
	limiter    RateLimiter
}

func NewWarmupUseCase(warmupRepo repository.WarmupRepository, limiter RateLimiter) *WarmupUseCase {
	return &WarmupUseCase{
		warmupRepo: warmupRepo,
		limiter:    limiter,
	}
}

// Warmup pings the backend unless it was pinged recently. It reports
// whether a ping was sent and whether it succeeded; failures are only logged.
func (uc *WarmupUseCase) Warmup(ctx context.Context) (sent bool, ok bool) {
	if uc.limiter != nil {
		if allowed, _ := uc.limiter.Allow("backend", ratelimit.ActionWarmup); !allowed {
			return false, false
		}
	}
	if err := uc.warmupRepo.Ping(ctx); err != nil {
		logger.Debug("warm-up ping failed: %v", err)
		return true, false
	}
	logger.Debug("backend is awake")
	return true, true
}
