package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/infrastructure/httpclient"
	"webshop/pkg/config"
)

type httpFavoriteRepository struct {
	executor *httpclient.Executor
	timeouts config.Timeouts
}

func NewHTTPFavoriteRepository(executor *httpclient.Executor, timeouts config.Timeouts) repository.FavoriteRepository {
	return &httpFavoriteRepository{
		executor: executor,
		timeouts: timeouts,
	}
}

func (r *httpFavoriteRepository) List(ctx context.Context, email string) ([]*entity.Favorite, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:   http.MethodGet,
		Path:     "/favorites/" + url.PathEscape(email),
		Timeout:  r.timeouts.Favorites,
		Endpoint: "GET /favorites/:email",
	})
	if err != nil {
		return nil, err
	}
	return httpclient.DecodeList[*entity.Favorite](resp.Body)
}

func (r *httpFavoriteRepository) Add(ctx context.Context, email string, itemID int64) (*entity.Favorite, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/favorites",
		Body: map[string]interface{}{
			"userEmail": email,
			"itemId":    itemID,
		},
		Timeout: r.timeouts.Default,
	})
	if err != nil {
		return nil, err
	}

	var favorite entity.Favorite
	if err := httpclient.DecodeObject(resp.Body, &favorite); err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *httpFavoriteRepository) Remove(ctx context.Context, email string, itemID int64) error {
	_, err := r.executor.Do(ctx, httpclient.Request{
		Method:   http.MethodDelete,
		Path:     fmt.Sprintf("/favorites/%s/%d", url.PathEscape(email), itemID),
		Timeout:  r.timeouts.Default,
		Endpoint: "DELETE /favorites/:email/:itemId",
	})
	return err
}
