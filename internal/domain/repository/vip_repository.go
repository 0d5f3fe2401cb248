package repository

import (
	"context"

	"webshop/internal/domain/entity"
)

type CreatePaymentRequest struct {
	ItemID        int64  `json:"itemId"`
	OwnerEmail    string `json:"ownerEmail"`
	PaymentMethod string `json:"paymentMethod"`
	// CardNumber carries only the last four digits.
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	ExpiryDate string `json:"expiryDate"`
}

type VipRepository interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*entity.VipPayment, error)
	CompletePayment(ctx context.Context, paymentID int64, ownerEmail string) (*entity.VipPayment, error)
	Activate(ctx context.Context, itemID int64, ownerEmail string) (*entity.Listing, error)
	Price(ctx context.Context) (*entity.VipPrice, error)
}
