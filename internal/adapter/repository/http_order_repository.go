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

type httpOrderRepository struct {
	executor *httpclient.Executor
	timeouts config.Timeouts
}

func NewHTTPOrderRepository(executor *httpclient.Executor, timeouts config.Timeouts) repository.OrderRepository {
	return &httpOrderRepository{
		executor: executor,
		timeouts: timeouts,
	}
}

func (r *httpOrderRepository) Create(ctx context.Context, req repository.CreateOrderRequest) (*entity.Order, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    "/item-orders",
		Body:    req,
		Timeout: r.timeouts.Default,
	})
	if err != nil {
		return nil, err
	}

	var order entity.Order
	if err := httpclient.DecodeObject(resp.Body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *httpOrderRepository) ByCustomer(ctx context.Context, email string) ([]*entity.Order, error) {
	return r.list(ctx, "/item-orders/customer/"+url.PathEscape(email), "GET /item-orders/customer/:email")
}

func (r *httpOrderRepository) BySeller(ctx context.Context, email string) ([]*entity.Order, error) {
	return r.list(ctx, "/item-orders/seller/"+url.PathEscape(email), "GET /item-orders/seller/:email")
}

func (r *httpOrderRepository) list(ctx context.Context, path, endpoint string) ([]*entity.Order, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:   http.MethodGet,
		Path:     path,
		Timeout:  r.timeouts.Default,
		Endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}
	return httpclient.DecodeList[*entity.Order](resp.Body)
}

func (r *httpOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus) (*entity.Order, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:   http.MethodPut,
		Path:     fmt.Sprintf("/item-orders/%d/status", orderID),
		Body:     map[string]string{"status": string(status)},
		Timeout:  r.timeouts.Default,
		Endpoint: "PUT /item-orders/:id/status",
	})
	if err != nil {
		return nil, err
	}

	var order entity.Order
	if err := httpclient.DecodeObject(resp.Body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
