package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/auth"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/event"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/repository"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/service"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/session"
	sessionmemory "github.com/Rohit-bisht-rise/shopmanagement/internal/session/memory"
	storagememory "github.com/Rohit-bisht-rise/shopmanagement/internal/storage/memory"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/view"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/health"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Register(ctx context.Context, user *domain.User, customer *domain.Customer) error {
	args := m.Called(ctx, user, customer)
	return args.Error(0)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepo) CountByCustomer(ctx context.Context, customerID int64) (int, error) {
	args := m.Called(ctx, customerID)
	return args.Int(0), args.Error(1)
}

func (m *mockOrderRepo) CreateBatch(ctx context.Context, orders []*domain.Order) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *mockOrderRepo) Update(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ============================================================================
// Test Environment
// ============================================================================

const cookieName = "sessionid"

type testEnv struct {
	users     *mockUserRepo
	customers *mockCustomerRepo
	products  *mockProductRepo
	orders    *mockOrderRepo
	sessions  *sessionmemory.Store
	media     *storagememory.Storage
	events    *event.Recorder
	router    http.Handler
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, RouterConfig{ServiceName: "crm-test"})
}

func newTestEnvWithConfig(t *testing.T, cfg RouterConfig) *testEnv {
	t.Helper()
	e := &testEnv{
		users:     new(mockUserRepo),
		customers: new(mockCustomerRepo),
		products:  new(mockProductRepo),
		orders:    new(mockOrderRepo),
		sessions:  sessionmemory.NewStore(time.Hour),
		media:     storagememory.New("/media"),
		events:    event.NewRecorder(),
	}

	logger := newTestLogger()
	producer := event.NewProducer(e.events, logger)
	crm := service.NewCRMService(e.customers, e.products, e.orders, producer, logger)
	tokens := auth.NewResetTokenManager("handler-test-secret-with-32-bytes!", time.Hour)
	accounts := service.NewAccountService(e.users, e.customers, e.media, tokens, producer, "http://crm.test", logger)

	views, err := view.New()
	require.NoError(t, err)

	mgr := session.NewManager(e.sessions, cookieName, time.Hour, false)
	h := NewHandler(crm, accounts, mgr, views, logger)
	e.router = NewRouter(h, accounts, health.NewHandler(), cfg, logger)
	return e
}

var (
	adminUser    = &domain.User{ID: 1, Username: "root", Role: domain.RoleAdmin, IsActive: true}
	customerUser = &domain.User{ID: 2, Username: "peter", Role: domain.RoleCustomer, IsActive: true}
	noGroupUser  = &domain.User{ID: 3, Username: "drifter", IsActive: true}
)

// loginAs stores an authenticated session for u and returns its cookie.
func (e *testEnv) loginAs(t *testing.T, u *domain.User) *http.Cookie {
	t.Helper()
	e.users.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	if u.Role == domain.RoleCustomer {
		e.customers.On("GetByUserID", mock.Anything, u.ID).Return(&domain.Customer{ID: 9, Name: u.Username}, nil)
	}

	id := session.NewID()
	require.NoError(t, e.sessions.Save(context.Background(), id, &session.Data{UserID: u.ID}))
	return &http.Cookie{Name: cookieName, Value: id}
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, cookies...)
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
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
