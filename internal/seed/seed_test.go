package seed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
)

func newTestSeeder(t *testing.T) (*Seeder, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	s := New(mock, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.hashCost = bcrypt.MinCost
	return s, mock
}

func TestSeeder_Admin_Creates(t *testing.T) {
	s, mock := newTestSeeder(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("root", "root@example.com", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec("INSERT INTO user_groups").
		WithArgs(int64(1), domain.RoleAdmin).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	id, created, err := s.Admin(context.Background(), "root", "root@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_Admin_PromotesExistingUser(t *testing.T) {
	s, mock := newTestSeeder(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("root", "", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM users WHERE username = \\$1").
		WithArgs("root").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(4)))
	mock.ExpectExec("INSERT INTO user_groups").
		WithArgs(int64(4), domain.RoleAdmin).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	id, created, err := s.Admin(context.Background(), "root", "", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_Admin_GroupInsertFailsRollsBack(t *testing.T) {
	s, mock := newTestSeeder(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("root", "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec("INSERT INTO user_groups").
		WithArgs(int64(1), domain.RoleAdmin).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, _, err := s.Admin(context.Background(), "root", "", "s3cret-pass")
	assert.ErrorContains(t, err, "insert user group")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_Products(t *testing.T) {
	s, mock := newTestSeeder(t)
	defer mock.Close()

	products := []Product{
		{Name: "Ball", Price: 1999, Category: domain.CategoryOutdoor, Tags: []string{"Sports"}},
		{Name: "Table", Price: 5000, Category: domain.CategoryIndoor},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Ball", int64(1999), domain.CategoryOutdoor, "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO tags").
		WithArgs("Sports").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec("INSERT INTO product_tags").
		WithArgs(int64(1), int64(7)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Table", int64(5000), domain.CategoryIndoor, "").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectCommit()

	n, err := s.Products(context.Background(), products)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_Products_RejectsUnknownCategory(t *testing.T) {
	s, mock := newTestSeeder(t)
	defer mock.Close()

	_, err := s.Products(context.Background(), []Product{{Name: "Sofa", Category: "Living room"}})
	assert.ErrorContains(t, err, "unknown category")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_Products_FailureRollsBack(t *testing.T) {
	s, mock := newTestSeeder(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Ball", int64(1999), domain.CategoryOutdoor, "").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.Products(context.Background(), []Product{{Name: "Ball", Price: 1999, Category: domain.CategoryOutdoor}})
	assert.ErrorContains(t, err, `insert product "Ball"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_IsValid(t *testing.T) {
	names := make(map[string]bool)
	for _, p := range Catalog {
		assert.Contains(t, domain.ValidCategories(), p.Category, p.Name)
		assert.False(t, names[p.Name], "duplicate %s", p.Name)
		names[p.Name] = true
	}
}
