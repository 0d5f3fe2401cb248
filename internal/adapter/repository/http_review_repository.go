package repository

import (
	"context"
	"fmt"
	"net/http"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/infrastructure/httpclient"
	"webshop/pkg/config"
)

type httpReviewRepository struct {
	executor *httpclient.Executor
	timeouts config.Timeouts
}

func NewHTTPReviewRepository(executor *httpclient.Executor, timeouts config.Timeouts) repository.ReviewRepository {
	return &httpReviewRepository{
		executor: executor,
		timeouts: timeouts,
	}
}

func (r *httpReviewRepository) List(ctx context.Context, itemID int64) ([]*entity.Review, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:   http.MethodGet,
		Path:     fmt.Sprintf("/items/%d/reviews", itemID),
		Timeout:  r.timeouts.Default,
		Endpoint: "GET /items/:id/reviews",
	})
	if err != nil {
		return nil, err
	}
	return httpclient.DecodeList[*entity.Review](resp.Body)
}

func (r *httpReviewRepository) Create(ctx context.Context, itemID int64, review *entity.Review) (*entity.Review, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:   http.MethodPost,
		Path:     fmt.Sprintf("/items/%d/reviews", itemID),
		Body:     review,
		Timeout:  r.timeouts.Default,
		Endpoint: "POST /items/:id/reviews",
	})
	if err != nil {
		return nil, err
	}

	var created entity.Review
	if err := httpclient.DecodeObject(resp.Body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
