package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"webshop/internal/domain/entity"
	"webshop/internal/domain/repository"
	"webshop/internal/domain/session"
	"webshop/internal/domain/store"
	"webshop/pkg/config"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Create(ctx context.Context, listing *entity.Listing) (*repository.CreatedListing, error) {
	args := m.Called(ctx, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CreatedListing), args.Error(1)
}
func (m *MockListingRepository) GetByID(ctx context.Context, id int64) (*entity.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing).Clone(), args.Error(1)
}
func (m *MockListingRepository) List(ctx context.Context) ([]*entity.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Listing), args.Error(1)
}
func (m *MockListingRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockListingRepository) GetImageURL(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
func (m *MockListingRepository) RawImageURL(id int64) string {
	return "http://backend/items/" + itoa(id) + "/image/raw"
}
func (m *MockListingRepository) UploadImage(ctx context.Context, id int64, ownerEmail string, image repository.ImageUpload) (*repository.UploadResult, error) {
	args := m.Called(ctx, id, ownerEmail, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.UploadResult), args.Error(1)
}
func (m *MockListingRepository) ResolveImageURL(ref string) string {
	return entity.ResolveImageURL("http://backend", ref)
}

type MockFavoriteRepository struct{ mock.Mock }

func (m *MockFavoriteRepository) List(ctx context.Context, email string) ([]*entity.Favorite, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Favorite), args.Error(1)
}
func (m *MockFavoriteRepository) Add(ctx context.Context, email string, itemID int64) (*entity.Favorite, error) {
	args := m.Called(ctx, email, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Favorite), args.Error(1)
}
func (m *MockFavoriteRepository) Remove(ctx context.Context, email string, itemID int64) error {
	args := m.Called(ctx, email, itemID)
	return args.Error(0)
}

type MockMessageRepository struct{ mock.Mock }

func (m *MockMessageRepository) Send(ctx context.Context, itemID int64, senderEmail, content string) (*entity.Message, error) {
	args := m.Called(ctx, itemID, senderEmail, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Message), args.Error(1)
}
func (m *MockMessageRepository) Sent(ctx context.Context, email string) ([]*entity.Message, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Message), args.Error(1)
}
func (m *MockMessageRepository) Received(ctx context.Context, email string) ([]*entity.Message, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Message), args.Error(1)
}
func (m *MockMessageRepository) Answer(ctx context.Context, messageID int64, response string) (*entity.Message, error) {
	args := m.Called(ctx, messageID, response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Message), args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Create(ctx context.Context, req repository.CreateOrderRequest) (*entity.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}
func (m *MockOrderRepository) ByCustomer(ctx context.Context, email string) ([]*entity.Order, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Order), args.Error(1)
}
func (m *MockOrderRepository) BySeller(ctx context.Context, email string) ([]*entity.Order, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Order), args.Error(1)
}
func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus) (*entity.Order, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

type MockVipRepository struct{ mock.Mock }

func (m *MockVipRepository) CreatePayment(ctx context.Context, req repository.CreatePaymentRequest) (*entity.VipPayment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VipPayment), args.Error(1)
}
func (m *MockVipRepository) CompletePayment(ctx context.Context, paymentID int64, ownerEmail string) (*entity.VipPayment, error) {
	args := m.Called(ctx, paymentID, ownerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VipPayment), args.Error(1)
}
func (m *MockVipRepository) Activate(ctx context.Context, itemID int64, ownerEmail string) (*entity.Listing, error) {
	args := m.Called(ctx, itemID, ownerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing).Clone(), args.Error(1)
}
func (m *MockVipRepository) Price(ctx context.Context) (*entity.VipPrice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.VipPrice), args.Error(1)
}

type MockReviewRepository struct{ mock.Mock }

func (m *MockReviewRepository) List(ctx context.Context, itemID int64) ([]*entity.Review, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Review), args.Error(1)
}
func (m *MockReviewRepository) Create(ctx context.Context, itemID int64, review *entity.Review) (*entity.Review, error) {
	args := m.Called(ctx, itemID, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

type MockAuthRepository struct{ mock.Mock }

func (m *MockAuthRepository) Register(ctx context.Context, email, password, fullName string) error {
	args := m.Called(ctx, email, password, fullName)
	return args.Error(0)
}
func (m *MockAuthRepository) Login(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

type MockWarmupRepository struct{ mock.Mock }

func (m *MockWarmupRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// memoryPrefs is an in-memory session.Preferences.
type memoryPrefs struct {
	mu     sync.Mutex
	phones map[string]string
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{phones: make(map[string]string)}
}

func (p *memoryPrefs) ContactPhone(email string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phones[email], nil
}

func (p *memoryPrefs) SetContactPhone(email, phone string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phones[email] = phone
	return nil
}

// denyLimiter refuses every action.
type denyLimiter struct{}

func (denyLimiter) Allow(string, string) (bool, time.Duration) {
	return false, 4 * time.Second
}

var testImages = config.ImageConfig{
	Budget:       300 * 1024,
	Threshold:    300 * 1024,
	HardCap:      10 * 1024 * 1024,
	MaxDimension: 1280,
	PollAttempts: 3,
	PollBackoff:  time.Millisecond,
}

func loggedIn(email string) *session.Session {
	s := session.New(nil)
	if email != "" {
		s.Set(email)
	}
	return s
}

func seedListing(s *store.ViewStore, id int64, owner string) *entity.Listing {
	l := &entity.Listing{
		ID:          id,
		Title:       "Listing " + itoa(id),
		Description: "A description that is comfortably longer than forty characters.",
		OwnerEmail:  owner,
		IsVip:       entity.BoolPtr(false),
	}
	stored, _ := s.UpsertListing(l)
	return stored
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)
