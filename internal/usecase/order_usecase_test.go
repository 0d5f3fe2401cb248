package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/domain/store"
	"webshop/pkg/errors"
)

func newOrderFixture() (*MockOrderRepository, *store.ViewStore, *OrderUseCase) {
	repo := new(MockOrderRepository)
	viewStore := store.NewViewStore(nil)
	return repo, viewStore, NewOrderUseCase(repo, viewStore, loggedIn(ana))
}

func validOrder() CreateOrderInput {
	return CreateOrderInput{
		ItemID:          4,
		CustomerName:    "Ana Petrova",
		CustomerPhone:   "+359888123456",
		PaymentMethod:   entity.PaymentCashOnDelivery,
		DeliveryMethod:  entity.DeliverySpeedy,
		DeliveryType:    entity.DeliveryToOffice,
		DeliveryAddress: "Sofia, office 12",
	}
}

func TestCreateOrder(t *testing.T) {
	repo, viewStore, uc := newOrderFixture()
	seedListing(viewStore, 4, "bob@example.com")

	repo.On("Create", mock.Anything, repository.CreateOrderRequest{
		CustomerEmail:   ana,
		CustomerName:    "Ana Petrova",
		CustomerPhone:   "+359888123456",
		ItemID:          4,
		PaymentMethod:   entity.PaymentCashOnDelivery,
		DeliveryMethod:  entity.DeliverySpeedy,
		DeliveryAddress: "Office: Sofia, office 12",
	}).Return(&entity.Order{ID: 70, CustomerEmail: ana, Status: entity.OrderPending}, nil).Once()

	order, err := uc.CreateOrder(context.Background(), validOrder())
	require.NoError(t, err)

	assert.Equal(t, int64(70), order.ID)
	require.Len(t, viewStore.Snapshot().CustomerOrders, 1)
	repo.AssertExpectations(t)
}

func TestCreateOrderRejections(t *testing.T) {
	tests := []struct {
		name   string
		owner  string
		mutate func(*CreateOrderInput)
		code   string
	}{
		{"missing phone", "bob@example.com", func(in *CreateOrderInput) { in.CustomerPhone = "" }, errors.CodeValidationFailed},
		{"missing address", "bob@example.com", func(in *CreateOrderInput) { in.DeliveryAddress = " " }, errors.CodeValidationFailed},
		{"unknown courier", "bob@example.com", func(in *CreateOrderInput) { in.DeliveryMethod = "pigeon" }, errors.CodeValidationFailed},
		{"own listing", ana, func(*CreateOrderInput) {}, errors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, viewStore, uc := newOrderFixture()
			seedListing(viewStore, 4, tt.owner)
			input := validOrder()
			tt.mutate(&input)

			_, err := uc.CreateOrder(context.Background(), input)

			assert.Equal(t, tt.code, errors.CodeOf(err))
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateStatusRefetchesOrders(t *testing.T) {
	repo, viewStore, uc := newOrderFixture()
	viewStore.ReplaceSellerOrders([]*entity.Order{{ID: 5, Status: entity.OrderPending}})

	repo.On("UpdateStatus", mock.Anything, int64(5), entity.OrderConfirmed).
		Return(&entity.Order{ID: 5, Status: entity.OrderConfirmed}, nil).Once()
	repo.On("ByCustomer", mock.Anything, ana).Return([]*entity.Order{}, nil).Once()
	repo.On("BySeller", mock.Anything, ana).Return([]*entity.Order{{ID: 5, Status: entity.OrderConfirmed}}, nil).Once()

	order, err := uc.UpdateStatus(context.Background(), 5, entity.OrderConfirmed)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderConfirmed, order.Status)
	repo.AssertExpectations(t)
}

func TestUpdateStatusKeepsServerResponseWhenRefetchFails(t *testing.T) {
	repo, viewStore, uc := newOrderFixture()
	viewStore.ReplaceSellerOrders([]*entity.Order{{ID: 5, Status: entity.OrderConfirmed}})

	repo.On("UpdateStatus", mock.Anything, int64(5), entity.OrderShipped).
		Return(&entity.Order{ID: 5, Status: entity.OrderShipped}, nil).Once()
	repo.On("ByCustomer", mock.Anything, ana).Return(nil, errors.Timeout("timed out", nil)).Once()
	repo.On("BySeller", mock.Anything, ana).Return(nil, errors.Timeout("timed out", nil)).Once()

	order, err := uc.UpdateStatus(context.Background(), 5, entity.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderShipped, order.Status)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	repo, viewStore, uc := newOrderFixture()
	viewStore.ReplaceSellerOrders([]*entity.Order{{ID: 5, Status: entity.OrderDelivered}})

	_, err := uc.UpdateStatus(context.Background(), 5, entity.OrderCancelled)
	assert.Equal(t, errors.CodeConflict, errors.CodeOf(err))

	_, err = uc.UpdateStatus(context.Background(), 6, entity.OrderConfirmed)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))

	_, err = uc.UpdateStatus(context.Background(), 5, "LOST")
	assert.Equal(t, errors.CodeValidationFailed, errors.CodeOf(err))

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshOrdersKeepsListThatFailed(t *testing.T) {
	repo, viewStore, uc := newOrderFixture()
	viewStore.ReplaceCustomerOrders([]*entity.Order{{ID: 1}})

	repo.On("ByCustomer", mock.Anything, ana).Return(nil, errors.Timeout("timed out", nil)).Once()
	repo.On("BySeller", mock.Anything, ana).Return([]*entity.Order{{ID: 2}, {ID: 2}}, nil).Once()

	lists, err := uc.RefreshOrders(context.Background())
	assert.Error(t, err)
	require.Len(t, lists.AsCustomer, 1)
	require.Len(t, lists.AsSeller, 1)
	assert.Equal(t, int64(2), lists.AsSeller[0].ID)
}
