package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
)

func newCustomerTestFixture(t *testing.T) (*CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewCustomerRepository(mock), mock
}

func customerRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "name", "phone", "email", "profile_pic", "date_created"})
}

func int64Ptr(v int64) *int64 { return &v }

func TestCustomerRepository_GetByID(t *testing.T) {
	repo, mock := newCustomerTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("FROM customers WHERE id = \\$1").
		WithArgs(int64(42)).
		WillReturnRows(customerRows().AddRow(int64(42), int64Ptr(7), "Peter", "555-0101", "p@example.com", "avatars/p.png", time.Now()))

	c, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Peter", c.Name)
	require.NotNil(t, c.UserID)
	assert.Equal(t, int64(7), *c.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newCustomerTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("FROM customers WHERE id = \\$1").
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	c, err := repo.GetByID(context.Background(), 42)
	assert.Nil(t, c)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}

func TestCustomerRepository_GetByUserID(t *testing.T) {
	repo, mock := newCustomerTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("FROM customers WHERE user_id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(customerRows().AddRow(int64(42), int64Ptr(7), "Peter", "", "", "", time.Now()))

	c, err := repo.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.ID)
}

func TestCustomerRepository_List(t *testing.T) {
	repo, mock := newCustomerTestFixture(t)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("FROM customers ORDER BY id").
		WillReturnRows(customerRows().
			AddRow(int64(1), int64Ptr(2), "Peter", "", "", "", now).
			AddRow(int64(2), int64Ptr(3), "Mary", "", "", "", now))

	customers, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Mary", customers[1].Name)
}

func TestCustomerRepository_List_Empty(t *testing.T) {
	repo, mock := newCustomerTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("FROM customers").WillReturnRows(customerRows())

	customers, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, customers)
	assert.Empty(t, customers)
}

func TestCustomerRepository_Update(t *testing.T) {
	repo, mock := newCustomerTestFixture(t)
	defer mock.Close()

	c := &domain.Customer{ID: 42, Name: "Peter P", Phone: "555", Email: "pp@example.com", ProfilePic: "avatars/x.png"}
	mock.ExpectExec("UPDATE customers SET").
		WithArgs(int64(42), "Peter P", "555", "pp@example.com", "avatars/x.png").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), c))

	mock.ExpectExec("UPDATE customers SET").
		WithArgs(int64(43), "", "", "", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err := repo.Update(context.Background(), &domain.Customer{ID: 43})
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
