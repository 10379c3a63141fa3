package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/repository"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/database"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
)

const selectOrder = `
	SELECT o.id, o.customer_id, o.product_id, o.status, o.note, o.date_created,
		c.name AS customer_name, p.name AS product_name
	FROM orders o
	JOIN customers c ON c.id = o.customer_id
	JOIN products p ON p.id = o.product_id`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (_ *domain.Order, err error) {
	query := selectOrder + ` WHERE o.id = $1`
	ctx, end := database.TraceQuery(ctx, "GetOrderByID", query)
	defer func() { end(err) }()

	var o domain.Order
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CustomerID, &o.ProductID, &o.Status, &o.Note, &o.DateCreated,
		&o.CustomerName, &o.ProductName,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

// buildOrderWhere turns filter into a WHERE clause and its positional args.
func buildOrderWhere(filter repository.OrderFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.CustomerID != 0 {
		add("o.customer_id = $%d", filter.CustomerID)
	}
	if filter.ProductID != 0 {
		add("o.product_id = $%d", filter.ProductID)
	}
	if filter.ProductName != "" {
		add("p.name ILIKE '%%' || $%d || '%%'", escapeLike(filter.ProductName))
	}
	if filter.Status != "" {
		add("o.status = $%d", filter.Status)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) (_ []domain.Order, err error) {
	where, args := buildOrderWhere(filter)
	query := selectOrder + where + ` ORDER BY o.date_created DESC, o.id DESC`
	ctx, end := database.TraceQuery(ctx, "ListOrders", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err = rows.Scan(
			&o.ID, &o.CustomerID, &o.ProductID, &o.Status, &o.Note, &o.DateCreated,
			&o.CustomerName, &o.ProductName,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) CountByCustomer(ctx context.Context, customerID int64) (n int, err error) {
	query := `SELECT COUNT(*) FROM orders WHERE customer_id = $1`
	ctx, end := database.TraceQuery(ctx, "CountOrdersByCustomer", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, customerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// CreateBatch inserts every order inside one transaction.
func (r *OrderRepository) CreateBatch(ctx context.Context, orders []*domain.Order) (err error) {
	query := `
		INSERT INTO orders (customer_id, product_id, status, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date_created`
	ctx, end := database.TraceQuery(ctx, "CreateOrders", query)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i, o := range orders {
		err = tx.QueryRow(ctx, query, o.CustomerID, o.ProductID, o.Status, o.Note).
			Scan(&o.ID, &o.DateCreated)
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.InvalidInput(fmt.Sprintf("order %d references a missing customer or product", i+1))
			}
			return fmt.Errorf("insert order %d: %w", i+1, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) (err error) {
	query := `UPDATE orders SET customer_id = $2, product_id = $3, status = $4, note = $5 WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "UpdateOrder", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, o.ID, o.CustomerID, o.ProductID, o.Status, o.Note)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("order references a missing customer or product")
		}
		return fmt.Errorf("update order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", o.ID)
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) (err error) {
	query := `DELETE FROM orders WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "DeleteOrder", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}
