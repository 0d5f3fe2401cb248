package repository

import (
	"context"

	"webshop/internal/domain/entity"
)

type CreateOrderRequest struct {
	CustomerEmail   string                `json:"customerEmail"`
	CustomerName    string                `json:"customerName"`
	CustomerPhone   string                `json:"customerPhone"`
	ItemID          int64                 `json:"itemId"`
	PaymentMethod   entity.PaymentMethod  `json:"paymentMethod"`
	DeliveryMethod  entity.DeliveryMethod `json:"deliveryMethod"`
	DeliveryAddress string                `json:"deliveryAddress"`
}

type OrderRepository interface {
	Create(ctx context.Context, req CreateOrderRequest) (*entity.Order, error)
	ByCustomer(ctx context.Context, email string) ([]*entity.Order, error)
	BySeller(ctx context.Context, email string) ([]*entity.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus) (*entity.Order, error)
}
