package repository

import (
	"context"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
)

// UserRepository defines persistence for login accounts and their groups.
type UserRepository interface {
	// GetByID retrieves a user and its resolved role.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by exact username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves the active user registered with email,
	// compared case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Register inserts user, adds it to the customer group and inserts
	// customer linked to it, all in one transaction. IDs are written back.
	Register(ctx context.Context, user *domain.User, customer *domain.Customer) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// CustomerRepository defines persistence for customers.
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)

	// GetByUserID returns the customer linked to a login account.
	GetByUserID(ctx context.Context, userID int64) (*domain.Customer, error)

	// List returns every customer ordered by id.
	List(ctx context.Context) ([]domain.Customer, error)

	// Update saves name, phone, email and profile_pic.
	Update(ctx context.Context, customer *domain.Customer) error
}

// ProductRepository defines read access to the catalogue.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// List returns every product with its tags, ordered by name.
	List(ctx context.Context) ([]domain.Product, error)
}

// OrderFilter narrows an order listing. Zero fields are ignored.
type OrderFilter struct {
	CustomerID  int64
	ProductID   int64
	ProductName string // case-insensitive substring
	Status      string // exact match
}

// OrderRepository defines persistence for orders.
type OrderRepository interface {
	// GetByID retrieves an order with customer and product names.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// List returns orders matching filter, newest first.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)

	// CountByCustomer returns the number of orders placed by a customer.
	CountByCustomer(ctx context.Context, customerID int64) (int, error)

	// CreateBatch inserts all orders in one transaction. Either every row
	// is stored or none is. IDs and creation times are written back.
	CreateBatch(ctx context.Context, orders []*domain.Order) error

	// Update saves customer, product, status and note.
	Update(ctx context.Context, order *domain.Order) error

	// Delete removes an order.
	Delete(ctx context.Context, id int64) error
}
