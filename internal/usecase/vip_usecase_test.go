package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/domain/store"
	"webshop/pkg/errors"
)

var testCard = &entity.CardDetails{
	Number: "4242 4242 4242 4242",
	Holder: "Ana Petrova",
	Expiry: "12/30",
	CVV:    "123",
}

type vipFixture struct {
	vipRepo     *MockVipRepository
	listingRepo *MockListingRepository
	store       *store.ViewStore
	uc          *VipUseCase
}

func newVipFixture() *vipFixture {
	vipRepo := new(MockVipRepository)
	listingRepo := new(MockListingRepository)
	viewStore := store.NewViewStore(nil)
	return &vipFixture{
		vipRepo:     vipRepo,
		listingRepo: listingRepo,
		store:       viewStore,
		uc:          NewVipUseCase(vipRepo, listingRepo, viewStore, loggedIn(ana), nil),
	}
}

func TestVipFailureAtCompleteLeavesListingAndRetryResumes(t *testing.T) {
	f := newVipFixture()
	seedListing(f.store, 3, ana)

	f.vipRepo.On("CreatePayment", mock.Anything, repository.CreatePaymentRequest{
		ItemID:        3,
		OwnerEmail:    ana,
		PaymentMethod: string(entity.PaymentCard),
		CardNumber:    "4242",
		CardHolder:    "Ana Petrova",
		ExpiryDate:    "12/30",
	}).Return(&entity.VipPayment{PaymentID: 55}, nil).Once()
	f.vipRepo.On("CompletePayment", mock.Anything, int64(55), ana).
		Return(nil, errors.ServerRejected(502, "gateway down")).Once()

	tx, err := f.uc.Begin(3)
	require.NoError(t, err)
	assert.Equal(t, VipCollectingPayment, tx.State())

	_, err = f.uc.Submit(context.Background(), 3, testCard)
	require.Error(t, err)
	assert.Equal(t, errors.CodeVipStepFailed, errors.CodeOf(err))

	status := tx.Status()
	assert.Equal(t, VipFailed, status.State)
	assert.Equal(t, StepCompletePayment, status.FailedStep)
	assert.True(t, status.CanRetry)
	stored, _ := f.store.Listing(3)
	assert.False(t, stored.VIP())

	f.vipRepo.On("CompletePayment", mock.Anything, int64(55), ana).
		Return(&entity.VipPayment{PaymentID: 55, Status: "COMPLETED"}, nil).Once()
	f.vipRepo.On("Activate", mock.Anything, int64(3), ana).
		Return(&entity.Listing{ID: 3, Title: "Listing 3", IsVip: entity.BoolPtr(true)}, nil).Once()
	// A lagging read must not undo the activation.
	f.listingRepo.On("GetByID", mock.Anything, int64(3)).
		Return(&entity.Listing{ID: 3, Title: "Listing 3", IsVip: entity.BoolPtr(false)}, nil).Once()

	tx, err = f.uc.Submit(context.Background(), 3, nil)
	require.NoError(t, err)

	assert.Equal(t, VipCompleted, tx.State())
	assert.True(t, tx.Status().Listing.VIP())
	stored, _ = f.store.Listing(3)
	assert.True(t, stored.VIP())
	f.vipRepo.AssertNumberOfCalls(t, "CreatePayment", 1)
	f.vipRepo.AssertExpectations(t)

	_, pending := f.uc.Transaction(3)
	assert.False(t, pending)
}

func TestVipFailureAtCreateRetriesFromStart(t *testing.T) {
	f := newVipFixture()
	seedListing(f.store, 3, ana)

	f.vipRepo.On("CreatePayment", mock.Anything, mock.Anything).Return(nil, errors.Timeout("timed out", nil)).Once()
	_, err := f.uc.Begin(3)
	require.NoError(t, err)

	tx, err := f.uc.Submit(context.Background(), 3, testCard)
	require.Error(t, err)
	assert.Equal(t, StepCreatePayment, tx.Status().FailedStep)

	f.vipRepo.On("CreatePayment", mock.Anything, mock.Anything).Return(&entity.VipPayment{PaymentID: 9}, nil).Once()
	f.vipRepo.On("CompletePayment", mock.Anything, int64(9), ana).Return(&entity.VipPayment{PaymentID: 9}, nil).Once()
	f.vipRepo.On("Activate", mock.Anything, int64(3), ana).Return(&entity.Listing{ID: 3, IsVip: entity.BoolPtr(true)}, nil).Once()
	f.listingRepo.On("GetByID", mock.Anything, int64(3)).Return(nil, errors.Timeout("timed out", nil)).Once()

	tx, err = f.uc.Submit(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, VipCompleted, tx.State())
	stored, _ := f.store.Listing(3)
	assert.True(t, stored.VIP())
	assert.Equal(t, "Listing 3", stored.Title)
}

func TestVipInvalidCardMakesNoCalls(t *testing.T) {
	f := newVipFixture()
	seedListing(f.store, 3, ana)
	_, err := f.uc.Begin(3)
	require.NoError(t, err)

	bad := *testCard
	bad.Number = "4242 4242 4242 4241"
	tx, err := f.uc.Submit(context.Background(), 3, &bad)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationFailed, appErr.Code)
	assert.Equal(t, "cardNumber", appErr.Field)
	assert.Equal(t, VipCollectingPayment, tx.State())
	f.vipRepo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

func TestVipMalformedCVVMakesNoCalls(t *testing.T) {
	for _, cvv := range []string{"-12", "+123", "1.23"} {
		t.Run(cvv, func(t *testing.T) {
			f := newVipFixture()
			seedListing(f.store, 3, ana)
			_, err := f.uc.Begin(3)
			require.NoError(t, err)

			bad := *testCard
			bad.CVV = cvv
			tx, err := f.uc.Submit(context.Background(), 3, &bad)

			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.CodeValidationFailed, appErr.Code)
			assert.Equal(t, "cvv", appErr.Field)
			assert.Equal(t, VipCollectingPayment, tx.State())
			f.vipRepo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
		})
	}
}

func TestVipBeginRules(t *testing.T) {
	t.Run("already VIP completes without calls", func(t *testing.T) {
		f := newVipFixture()
		l := seedListing(f.store, 3, ana)
		l.IsVip = entity.BoolPtr(true)
		f.store.UpsertListing(l)

		tx, err := f.uc.Begin(3)
		require.NoError(t, err)
		assert.Equal(t, VipCompleted, tx.State())
		f.vipRepo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newVipFixture()
		seedListing(f.store, 3, "bob@example.com")

		_, err := f.uc.Begin(3)
		assert.Equal(t, errors.CodeForbidden, errors.CodeOf(err))
	})

	t.Run("unknown listing", func(t *testing.T) {
		f := newVipFixture()
		_, err := f.uc.Begin(99)
		assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
	})

	t.Run("pending transaction is reused", func(t *testing.T) {
		f := newVipFixture()
		seedListing(f.store, 3, ana)
		first, _ := f.uc.Begin(3)
		second, _ := f.uc.Begin(3)
		assert.Same(t, first, second)
	})
}

func TestVipCancel(t *testing.T) {
	f := newVipFixture()
	seedListing(f.store, 3, ana)
	_, err := f.uc.Begin(3)
	require.NoError(t, err)

	require.NoError(t, f.uc.Cancel(3))

	_, pending := f.uc.Transaction(3)
	assert.False(t, pending)
	stored, _ := f.store.Listing(3)
	assert.False(t, stored.VIP())

	_, err = f.uc.Submit(context.Background(), 3, testCard)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestVipConcurrentSubmitRunsOnce(t *testing.T) {
	f := newVipFixture()
	seedListing(f.store, 3, ana)
	_, err := f.uc.Begin(3)
	require.NoError(t, err)

	release := make(chan struct{})
	f.vipRepo.On("CreatePayment", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(&entity.VipPayment{PaymentID: 1}, nil).Once()
	f.vipRepo.On("CompletePayment", mock.Anything, int64(1), ana).Return(&entity.VipPayment{PaymentID: 1}, nil).Once()
	f.vipRepo.On("Activate", mock.Anything, int64(3), ana).Return(&entity.Listing{ID: 3, IsVip: entity.BoolPtr(true)}, nil).Once()
	f.listingRepo.On("GetByID", mock.Anything, int64(3)).Return(nil, errors.Timeout("timed out", nil)).Maybe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = f.uc.Submit(context.Background(), 3, testCard)
	}()

	require.Eventually(t, func() bool {
		tx, ok := f.uc.Transaction(3)
		return ok && tx.State() == VipSubmitting
	}, waitFor, tick)

	_, err = f.uc.Submit(context.Background(), 3, testCard)
	assert.Equal(t, errors.CodeConflict, errors.CodeOf(err))
	assert.Equal(t, errors.CodeConflict, errors.CodeOf(f.uc.Cancel(3)))

	close(release)
	wg.Wait()
	f.vipRepo.AssertNumberOfCalls(t, "CreatePayment", 1)
}

func TestVipPriceFallsBackToDefault(t *testing.T) {
	f := newVipFixture()
	f.vipRepo.On("Price", mock.Anything).Return(nil, errors.NetworkUnreachable(nil)).Once()

	price := f.uc.Price(context.Background())
	assert.True(t, decimal.NewFromInt(2).Equal(price.Price))
	assert.Equal(t, "EUR", price.Currency)

	f.vipRepo.On("Price", mock.Anything).Return(&entity.VipPrice{Price: decimal.RequireFromString("3.50")}, nil).Once()
	price = f.uc.Price(context.Background())
	assert.Equal(t, "3.5", price.Price.String())
	assert.Equal(t, "EUR", price.Currency)
}
