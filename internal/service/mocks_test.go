package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/auth"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/event"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/repository"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/storage/memory"
)

// --- Mock Repositories ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Register(ctx context.Context, user *domain.User, customer *domain.Customer) error {
	args := m.Called(ctx, user, customer)
	return args.Error(0)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	args := m.Called(ctx, customerID)
	return args.Int(0), args.Error(1)
}

func (m *mockOrderRepository) CreateBatch(ctx context.Context, orders []*domain.Order) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *mockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type crmFixture struct {
	customers *mockCustomerRepository
	products  *mockProductRepository
	orders    *mockOrderRepository
	events    *event.Recorder
	svc       *CRMService
}

func newTestCRMService() *crmFixture {
	f := &crmFixture{
		customers: new(mockCustomerRepository),
		products:  new(mockProductRepository),
		orders:    new(mockOrderRepository),
		events:    event.NewRecorder(),
	}
	logger := newTestLogger()
	f.svc = NewCRMService(f.customers, f.products, f.orders, event.NewProducer(f.events, logger), logger)
	return f
}

type accountFixture struct {
	users     *mockUserRepository
	customers *mockCustomerRepository
	storage   *memory.Storage
	tokens    *auth.ResetTokenManager
	events    *event.Recorder
	svc       *AccountService
}

func newTestAccountService() *accountFixture {
	f := &accountFixture{
		users:     new(mockUserRepository),
		customers: new(mockCustomerRepository),
		storage:   memory.New("/media"),
		tokens:    auth.NewResetTokenManager("test-secret-that-is-long-enough-32b", time.Hour),
		events:    event.NewRecorder(),
	}
	logger := newTestLogger()
	f.svc = NewAccountService(f.users, f.customers, f.storage, f.tokens,
		event.NewProducer(f.events, logger), "http://crm.test/", logger)
	f.svc.hashCost = bcrypt.MinCost
	return f
}

func hashPassword(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Ball", Price: 1999, Category: domain.CategoryOutdoor},
		{ID: 2, Name: "BBQ Grill", Price: 20000, Category: domain.CategoryOutdoor},
		{ID: 3, Name: "Table", Price: 5000, Category: domain.CategoryIndoor},
	}
}
