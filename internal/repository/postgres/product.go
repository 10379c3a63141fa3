package postgres

import (
	"context"
	"fmt"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/database"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
)

// Tags are aggregated in the same query to avoid a lookup per product.
const selectProduct = `
	SELECT p.id, p.name, p.price, p.category, p.description, p.date_created,
		COALESCE(ARRAY_AGG(t.name ORDER BY t.name) FILTER (WHERE t.id IS NOT NULL), '{}') AS tags
	FROM products p
	LEFT JOIN product_tags pt ON pt.product_id = p.id
	LEFT JOIN tags t ON t.id = pt.tag_id`

const groupProduct = ` GROUP BY p.id`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (_ *domain.Product, err error) {
	query := selectProduct + ` WHERE p.id = $1` + groupProduct
	ctx, end := database.TraceQuery(ctx, "GetProductByID", query)
	defer func() { end(err) }()

	var p domain.Product
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Category, &p.Description, &p.DateCreated, &p.Tags,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context) (_ []domain.Product, err error) {
	query := selectProduct + groupProduct + ` ORDER BY p.name, p.id`
	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err = rows.Scan(
			&p.ID, &p.Name, &p.Price, &p.Category, &p.Description, &p.DateCreated, &p.Tags,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}
