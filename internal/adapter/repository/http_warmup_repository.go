package repository

import (
	"context"
	"net/http"

	"webshop/internal/domain/repository"
	"webshop/internal/infrastructure/httpclient"
	"webshop/pkg/config"
)

type httpWarmupRepository struct {
	executor *httpclient.Executor
	timeouts config.Timeouts
}

func NewHTTPWarmupRepository(executor *httpclient.Executor, timeouts config.Timeouts) repository.WarmupRepository {
	return &httpWarmupRepository{
		executor: executor,
		timeouts: timeouts,
	}
}

// Ping walks ping -> health -> list until one answers.
func (r *httpWarmupRepository) Ping(ctx context.Context) error {
	_, err := r.executor.DoChain(ctx, []httpclient.Request{
		{Method: http.MethodGet, Path: "/items/ping", Timeout: r.timeouts.Warmup},
		{Method: http.MethodGet, Path: "/actuator/health", Timeout: r.timeouts.Warmup},
		{Method: http.MethodGet, Path: "/items/list", Timeout: r.timeouts.Warmup},
	})
	return err
}
