package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/domain/session"
	"webshop/internal/domain/store"
	"webshop/internal/domain/validation"
	"webshop/internal/infrastructure/metrics"
	"webshop/pkg/errors"
	"webshop/pkg/logger"
)

type VipState string

const (
	VipIdle              VipState = "idle"
	VipCollectingPayment VipState = "collecting_payment"
	VipSubmitting        VipState = "submitting"
	VipCompleted         VipState = "completed"
	VipFailed            VipState = "failed"
)

// VipStep is one backend call of the upgrade, in execution order.
type VipStep string

const (
	StepCreatePayment   VipStep = "create_payment"
	StepCompletePayment VipStep = "complete_payment"
	StepActivate        VipStep = "activate"
)

var vipSteps = []VipStep{StepCreatePayment, StepCompletePayment, StepActivate}

var defaultVipPrice = entity.VipPrice{Price: decimal.NewFromInt(2), Currency: "EUR"}

// VipTransaction is one VIP upgrade of a listing. Card data lives only here,
// and only until the transaction completes or is cancelled.
type VipTransaction struct {
	mu         sync.Mutex
	itemID     int64
	ownerEmail string
	state      VipState
	failedStep VipStep
	failure    *errors.AppError
	paymentID  int64
	card       *entity.CardDetails
	listing    *entity.Listing
}

// VipStatus is the externally visible state of a transaction.
type VipStatus struct {
	ItemID       int64           `json:"itemId"`
	State        VipState        `json:"state"`
	FailedStep   VipStep         `json:"failedStep,omitempty"`
	ErrorCode    string          `json:"errorCode,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	CanRetry     bool            `json:"canRetry"`
	Listing      *entity.Listing `json:"listing,omitempty"`
}

func (t *VipTransaction) Status() VipStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := VipStatus{
		ItemID:     t.itemID,
		State:      t.state,
		FailedStep: t.failedStep,
		CanRetry:   t.state == VipFailed && t.card != nil,
		Listing:    t.listing.Clone(),
	}
	if t.failure != nil {
		status.ErrorCode = t.failure.Code
		status.ErrorMessage = t.failure.Message
	}
	return status
}

func (t *VipTransaction) State() VipState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *VipTransaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Status())
}

type VipUseCase struct {
	vipRepo     repository.VipRepository
	listingRepo repository.ListingRepository
	store       *store.ViewStore
	session     *session.Session
	metrics     *metrics.MetricsManager

	mu      sync.Mutex
	pending map[int64]*VipTransaction
}

func NewVipUseCase(
	vipRepo repository.VipRepository,
	listingRepo repository.ListingRepository,
	viewStore *store.ViewStore,
	sess *session.Session,
	m *metrics.MetricsManager,
) *VipUseCase {
	return &VipUseCase{
		vipRepo:     vipRepo,
		listingRepo: listingRepo,
		store:       viewStore,
		session:     sess,
		metrics:     m,
		pending:     make(map[int64]*VipTransaction),
	}
}

// Begin opens a transaction for a listing the user owns. A listing that is
// already VIP yields a completed transaction without any network call.
func (uc *VipUseCase) Begin(itemID int64) (*VipTransaction, error) {
	email := uc.session.Email()
	if email == "" {
		return nil, errors.Unauthorized("Log in to upgrade a listing", nil)
	}
	listing, ok := uc.store.Listing(itemID)
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	if !listing.OwnedBy(email) {
		return nil, errors.Forbidden("Only the owner can make a listing VIP", nil)
	}

	if listing.VIP() {
		uc.metrics.ObserveVipTransition(string(VipCompleted))
		return &VipTransaction{itemID: itemID, ownerEmail: email, state: VipCompleted, listing: listing}, nil
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if tx, ok := uc.pending[itemID]; ok && tx.ownerEmail == email {
		return tx, nil
	}
	tx := &VipTransaction{itemID: itemID, ownerEmail: email, state: VipCollectingPayment}
	uc.pending[itemID] = tx
	uc.metrics.ObserveVipTransition(string(VipCollectingPayment))
	return tx, nil
}

func (uc *VipUseCase) Transaction(itemID int64) (*VipTransaction, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	tx, ok := uc.pending[itemID]
	return tx, ok
}

// Cancel drops a pending transaction. The listing stays as it is.
func (uc *VipUseCase) Cancel(itemID int64) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	tx, ok := uc.pending[itemID]
	if !ok {
		return nil
	}
	if tx.State() == VipSubmitting {
		return errors.Conflict("The payment is being processed and cannot be cancelled")
	}
	delete(uc.pending, itemID)
	uc.metrics.ObserveVipTransition(string(VipIdle))
	return nil
}

// Submit runs the payment steps for a pending transaction. card may be nil
// on a retry, in which case the card kept from the failed attempt is used.
// A retry resumes at the step that failed and reuses the payment id.
func (uc *VipUseCase) Submit(ctx context.Context, itemID int64, card *entity.CardDetails) (*VipTransaction, error) {
	tx, ok := uc.Transaction(itemID)
	if !ok {
		return nil, errors.NotFound("VIP transaction", nil)
	}
	email := uc.session.Email()
	if email == "" || !strings.EqualFold(email, tx.ownerEmail) {
		return nil, errors.Forbidden("Only the owner can pay for this upgrade", nil)
	}

	tx.mu.Lock()
	switch tx.state {
	case VipSubmitting:
		tx.mu.Unlock()
		return tx, errors.Conflict("The payment is already being processed")
	case VipCompleted:
		tx.mu.Unlock()
		return tx, nil
	}

	if card != nil {
		normalized := *card
		normalized.Number = entity.NormalizeCardNumber(card.Number)
		normalized.Holder = strings.TrimSpace(card.Holder)
		normalized.Expiry = strings.TrimSpace(card.Expiry)
		normalized.CVV = strings.TrimSpace(card.CVV)
		if err := validation.Struct(normalized); err != nil {
			tx.mu.Unlock()
			return tx, err
		}
		tx.card = &normalized
	}
	if tx.card == nil {
		tx.mu.Unlock()
		return tx, errors.ValidationFailed("cardNumber", "Card details are required")
	}

	start := 0
	if tx.state == VipFailed {
		start = stepIndex(tx.failedStep)
	}
	details := *tx.card
	paymentID := tx.paymentID
	tx.state = VipSubmitting
	tx.failedStep = ""
	tx.failure = nil
	tx.mu.Unlock()
	uc.metrics.ObserveVipTransition(string(VipSubmitting))

	listing, failedStep, err := uc.runSteps(ctx, tx, start, details, paymentID)
	if err != nil {
		stepErr := errors.VipStepFailed(string(failedStep), err)
		tx.mu.Lock()
		tx.state = VipFailed
		tx.failedStep = failedStep
		tx.failure = stepErr
		tx.mu.Unlock()
		uc.metrics.ObserveVipTransition(string(VipFailed))
		logger.Warn("VIP upgrade of listing %d failed at %s: %v", itemID, failedStep, err)
		return tx, stepErr
	}

	tx.mu.Lock()
	tx.state = VipCompleted
	tx.card = nil
	tx.listing = listing
	tx.mu.Unlock()
	uc.metrics.ObserveVipTransition(string(VipCompleted))

	uc.mu.Lock()
	delete(uc.pending, itemID)
	uc.mu.Unlock()

	logger.Info("listing %d upgraded to VIP", itemID)
	return tx, nil
}

func (uc *VipUseCase) runSteps(ctx context.Context, tx *VipTransaction, start int, card entity.CardDetails, paymentID int64) (*entity.Listing, VipStep, error) {
	for _, step := range vipSteps[start:] {
		switch step {
		case StepCreatePayment:
			payment, err := uc.vipRepo.CreatePayment(ctx, repository.CreatePaymentRequest{
				ItemID:        tx.itemID,
				OwnerEmail:    tx.ownerEmail,
				PaymentMethod: string(entity.PaymentCard),
				CardNumber:    card.LastFour(),
				CardHolder:    card.Holder,
				ExpiryDate:    card.Expiry,
			})
			if err != nil {
				return nil, step, err
			}
			paymentID = payment.PaymentID
			tx.mu.Lock()
			tx.paymentID = paymentID
			tx.mu.Unlock()

		case StepCompletePayment:
			if _, err := uc.vipRepo.CompletePayment(ctx, paymentID, tx.ownerEmail); err != nil {
				return nil, step, err
			}

		case StepActivate:
			activated, err := uc.vipRepo.Activate(ctx, tx.itemID, tx.ownerEmail)
			if err != nil {
				return nil, step, err
			}
			return uc.reconcile(ctx, tx.itemID, activated), "", nil
		}
	}
	return nil, "", nil
}

// reconcile applies the activated listing to the store and then tries one
// fresh read. The read is best effort.
func (uc *VipUseCase) reconcile(ctx context.Context, itemID int64, activated *entity.Listing) *entity.Listing {
	if activated == nil || activated.ID != itemID {
		activated = &entity.Listing{ID: itemID}
	}
	activated.IsVip = entity.BoolPtr(true)
	result, _ := uc.store.UpsertListing(activated)

	fresh, err := uc.listingRepo.GetByID(ctx, itemID)
	if err != nil {
		logger.Debug("post-VIP refresh of listing %d skipped: %v", itemID, err)
		return result
	}
	if fresh.IsVip == nil || !*fresh.IsVip {
		// A lagging replica must not undo the activation.
		fresh.IsVip = entity.BoolPtr(true)
	}
	if merged, ok := uc.store.UpsertListing(fresh); ok {
		return merged
	}
	return result
}

// Price returns the VIP price, falling back to the default when the
// backend cannot be asked.
func (uc *VipUseCase) Price(ctx context.Context) *entity.VipPrice {
	price, err := uc.vipRepo.Price(ctx)
	if err != nil || price == nil || !price.Price.IsPositive() {
		if err != nil {
			logger.Debug("VIP price unavailable, using default: %v", err)
		}
		p := defaultVipPrice
		return &p
	}
	if price.Currency == "" {
		price.Currency = defaultVipPrice.Currency
	}
	return price
}

func stepIndex(step VipStep) int {
	for i, s := range vipSteps {
		if s == step {
			return i
		}
	}
	return 0
}
