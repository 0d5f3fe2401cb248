package usecase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/domain/session"
	"webshop/internal/domain/store"
	"webshop/internal/domain/validation"
	"webshop/pkg/errors"
	"webshop/pkg/logger"
)

type OrderUseCase struct {
	orderRepo repository.OrderRepository
	store     *store.ViewStore
	session   *session.Session
}

func NewOrderUseCase(orderRepo repository.OrderRepository, viewStore *store.ViewStore, sess *session.Session) *OrderUseCase {
	return &OrderUseCase{
		orderRepo: orderRepo,
		store:     viewStore,
		session:   sess,
	}
}

type CreateOrderInput struct {
	ItemID          int64                 `json:"itemId" validate:"required,gt=0"`
	CustomerEmail   string                `json:"customerEmail" validate:"omitempty,email"`
	CustomerName    string                `json:"customerName" validate:"required,max=100"`
	CustomerPhone   string                `json:"customerPhone" validate:"required,min=6,max=20"`
	PaymentMethod   entity.PaymentMethod  `json:"paymentMethod" validate:"required,oneof=cash_on_delivery bank_transfer card revolut"`
	DeliveryMethod  entity.DeliveryMethod `json:"deliveryMethod" validate:"required,oneof=speedy econt"`
	DeliveryType    entity.DeliveryType   `json:"deliveryType" validate:"required,oneof=office address"`
	DeliveryAddress string                `json:"deliveryAddress" validate:"required,max=300"`
}

type OrderLists struct {
	AsCustomer []*entity.Order `json:"asCustomer"`
	AsSeller   []*entity.Order `json:"asSeller"`
}

func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*entity.Order, error) {
	email := uc.session.Email()
	if email == "" {
		return nil, errors.Unauthorized("Log in to place an order", nil)
	}
	input.CustomerEmail = strings.TrimSpace(input.CustomerEmail)
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.CustomerPhone = strings.TrimSpace(input.CustomerPhone)
	input.DeliveryAddress = strings.TrimSpace(input.DeliveryAddress)
	if input.CustomerEmail == "" {
		input.CustomerEmail = email
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if listing, ok := uc.store.Listing(input.ItemID); ok && listing.OwnedBy(email) {
		return nil, errors.Forbidden("You cannot order your own listing", nil)
	}

	order, err := uc.orderRepo.Create(ctx, repository.CreateOrderRequest{
		CustomerEmail:   input.CustomerEmail,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		ItemID:          input.ItemID,
		PaymentMethod:   input.PaymentMethod,
		DeliveryMethod:  input.DeliveryMethod,
		DeliveryAddress: deliveryAddress(input.DeliveryType, input.DeliveryAddress),
	})
	if err != nil {
		return nil, err
	}
	if order != nil && order.ID > 0 {
		uc.store.UpsertOrder(order, true)
	}
	logger.Info("order placed by %s for listing %d", email, input.ItemID)
	return order, nil
}

// RefreshOrders reloads both order lists concurrently. A list that fails to
// load keeps its previous contents.
func (uc *OrderUseCase) RefreshOrders(ctx context.Context) (*OrderLists, error) {
	email := uc.session.Email()
	if email == "" {
		return nil, errors.Unauthorized("Log in to see your orders", nil)
	}

	var customer, seller []*entity.Order
	var customerErr, sellerErr error
	var g errgroup.Group
	g.Go(func() error {
		customer, customerErr = uc.orderRepo.ByCustomer(ctx, email)
		return customerErr
	})
	g.Go(func() error {
		seller, sellerErr = uc.orderRepo.BySeller(ctx, email)
		return sellerErr
	})
	err := g.Wait()

	if customerErr == nil {
		uc.store.ReplaceCustomerOrders(customer)
	}
	if sellerErr == nil {
		uc.store.ReplaceSellerOrders(seller)
	}
	snap := uc.store.Snapshot()
	return &OrderLists{AsCustomer: snap.CustomerOrders, AsSeller: snap.SellerOrders}, err
}

// UpdateStatus asks the backend to move a seller order on. Transitions the
// backend would refuse are rejected locally; the stored status always comes
// from the server.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus) (*entity.Order, error) {
	if uc.session.Email() == "" {
		return nil, errors.Unauthorized("Log in to manage orders", nil)
	}
	if !status.Valid() {
		return nil, errors.ValidationFailed("status", "Unknown order status")
	}
	order, ok := uc.store.SellerOrder(orderID)
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	if !order.Status.CanTransition(status) {
		return nil, errors.Conflict(fmt.Sprintf("An order that is %s cannot become %s", order.Status, status))
	}

	updated, err := uc.orderRepo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	if _, err := uc.RefreshOrders(ctx); err != nil {
		logger.Warn("order refresh after status change failed: %v", err)
		if updated != nil && updated.ID == orderID {
			uc.store.UpsertOrder(updated, false)
		}
	}
	if fresh, ok := uc.store.SellerOrder(orderID); ok {
		return fresh, nil
	}
	return updated, nil
}

func deliveryAddress(kind entity.DeliveryType, address string) string {
	switch kind {
	case entity.DeliveryToOffice:
		return "Office: " + address
	case entity.DeliveryToAddress:
		return "Address: " + address
	}
	return address
}
