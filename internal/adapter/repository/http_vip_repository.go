package repository

import (
	"context"
	"net/http"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/infrastructure/httpclient"
	"webshop/pkg/config"
	"webshop/pkg/errors"
)

type httpVipRepository struct {
	executor *httpclient.Executor
	timeouts config.Timeouts
}

func NewHTTPVipRepository(executor *httpclient.Executor, timeouts config.Timeouts) repository.VipRepository {
	return &httpVipRepository{
		executor: executor,
		timeouts: timeouts,
	}
}

func (r *httpVipRepository) CreatePayment(ctx context.Context, req repository.CreatePaymentRequest) (*entity.VipPayment, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		Path:    "/vip-payment/create",
		Body:    req,
		Timeout: r.timeouts.Default,
	})
	if err != nil {
		return nil, err
	}

	var payment entity.VipPayment
	if err := httpclient.DecodeObject(resp.Body, &payment); err != nil {
		return nil, err
	}
	if payment.PaymentID == 0 {
		return nil, errors.ServerRejected(resp.Status, "Payment was not created")
	}
	return &payment, nil
}

func (r *httpVipRepository) CompletePayment(ctx context.Context, paymentID int64, ownerEmail string) (*entity.VipPayment, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/vip-payment/complete",
		Body: map[string]interface{}{
			"paymentId":  paymentID,
			"ownerEmail": ownerEmail,
			// Settlement is simulated; a processor token would go here.
			"paymentMethodId": nil,
		},
		Timeout: r.timeouts.Default,
	})
	if err != nil {
		return nil, err
	}

	var payment entity.VipPayment
	if err := httpclient.DecodeObject(resp.Body, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *httpVipRepository) Activate(ctx context.Context, itemID int64, ownerEmail string) (*entity.Listing, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/vip/activate",
		Body: map[string]interface{}{
			"itemId":     itemID,
			"ownerEmail": ownerEmail,
		},
		Timeout: r.timeouts.Default,
	})
	if err != nil {
		return nil, err
	}

	var listing entity.Listing
	if err := httpclient.DecodeObject(resp.Body, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *httpVipRepository) Price(ctx context.Context) (*entity.VipPrice, error) {
	resp, err := r.executor.Do(ctx, httpclient.Request{
		Method:  http.MethodGet,
		Path:    "/vip-payment/price",
		Timeout: r.timeouts.Default,
	})
	if err != nil {
		return nil, err
	}

	var price entity.VipPrice
	if err := httpclient.DecodeObject(resp.Body, &price); err != nil {
		return nil, err
	}
	return &price, nil
}
