package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/database"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
)

const selectCustomer = `SELECT id, user_id, name, phone, email, profile_pic, date_created FROM customers`

// CustomerRepository implements repository.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	pool database.DBTX
}

func NewCustomerRepository(pool database.DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func scanCustomer(row pgx.Row, c *domain.Customer) error {
	return row.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.Email, &c.ProfilePic, &c.DateCreated)
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return r.getOne(ctx, "GetCustomerByID", selectCustomer+` WHERE id = $1`, id)
}

func (r *CustomerRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Customer, error) {
	return r.getOne(ctx, "GetCustomerByUserID", selectCustomer+` WHERE user_id = $1`, userID)
}

func (r *CustomerRepository) getOne(ctx context.Context, op, query string, id int64) (_ *domain.Customer, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var c domain.Customer
	if err = scanCustomer(r.pool.QueryRow(ctx, query, id), &c); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("customer", id)
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) List(ctx context.Context) (_ []domain.Customer, err error) {
	query := selectCustomer + ` ORDER BY id`
	ctx, end := database.TraceQuery(ctx, "ListCustomers", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var c domain.Customer
		if err = scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}
	return customers, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) (err error) {
	query := `UPDATE customers SET name = $2, phone = $3, email = $4, profile_pic = $5 WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "UpdateCustomer", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Phone, c.Email, c.ProfilePic)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("customer", c.ID)
	}
	return nil
}
