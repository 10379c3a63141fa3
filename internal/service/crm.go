package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/event"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/repository"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
)

// OrderBatchSize is the number of rows on the create-order form.
const OrderBatchSize = 10

// CRMService implements the staff and customer dashboards and order
// management. It returns view-models and never renders.
type CRMService struct {
	customers repository.CustomerRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
	producer  *event.Producer
	logger    *slog.Logger
}

// NewCRMService creates a new CRM service.
func NewCRMService(
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *CRMService {
	return &CRMService{
		customers: customers,
		products:  products,
		orders:    orders,
		producer:  producer,
		logger:    logger,
	}
}

// --- View-models ---

// Dashboard is shown on / for staff and on /user/ for a customer.
type Dashboard struct {
	Orders    []domain.Order
	Customers []domain.Customer
	Customer  *domain.Customer
	domain.OrderStats
}

// CustomerDetail is the admin view of one customer.
type CustomerDetail struct {
	Customer    *domain.Customer
	Orders      []domain.Order
	TotalOrders int
	Filter      *OrderFilterForm
	Products    []domain.Product
}

// OrderRowInput is one row of the batch order form.
type OrderRowInput struct {
	Product string
	Status  string
}

func (r OrderRowInput) isBlank() bool {
	return strings.TrimSpace(r.Product) == "" && strings.TrimSpace(r.Status) == ""
}

// OrderBatchForm is the create-order page for one customer.
type OrderBatchForm struct {
	Customer *domain.Customer
	Products []domain.Product
	Statuses []string
	Rows     []OrderRowInput
	Errors   FormErrors
	Created  []*domain.Order
}

// RowError returns the message for field of row i.
func (f *OrderBatchForm) RowError(i int, field string) string {
	return f.Errors[RowField(i, field)]
}

// RowField is the form input name of field in row i.
func RowField(i int, field string) string {
	return fmt.Sprintf("form-%d-%s", i, field)
}

// OrderInput is the submitted update-order form.
type OrderInput struct {
	Customer string `form:"customer" validate:"required"`
	Product  string `form:"product" validate:"required"`
	Status   string `form:"status" validate:"required,order_status"`
	Note     string `form:"note" validate:"max=1000"`
}

// OrderForm is the update-order page.
type OrderForm struct {
	Order     *domain.Order
	Input     OrderInput
	Customers []domain.Customer
	Products  []domain.Product
	Statuses  []string
	Errors    FormErrors
}

// --- Dashboards ---

// AdminDashboard aggregates every order and customer.
func (s *CRMService) AdminDashboard(ctx context.Context) (*Dashboard, error) {
	orders, err := s.orders.List(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	return &Dashboard{
		Orders:     orders,
		Customers:  customers,
		OrderStats: domain.CountOrders(orders),
	}, nil
}

// CustomerDashboard aggregates the orders of the identity's own customer.
func (s *CRMService) CustomerDashboard(ctx context.Context, id domain.Identity) (*Dashboard, error) {
	customer, err := s.customerFor(ctx, id)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.List(ctx, repository.OrderFilter{CustomerID: customer.ID})
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}

	return &Dashboard{
		Orders:     orders,
		Customer:   customer,
		OrderStats: domain.CountOrders(orders),
	}, nil
}

func (s *CRMService) customerFor(ctx context.Context, id domain.Identity) (*domain.Customer, error) {
	if id.HasCustomer() {
		c, err := s.customers.GetByID(ctx, id.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("get customer: %w", err)
		}
		return c, nil
	}
	c, err := s.customers.GetByUserID(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("get customer for user: %w", err)
	}
	return c, nil
}

// ListProducts returns the whole catalogue.
func (s *CRMService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// CustomerDetail returns a customer with its orders narrowed by in.
// TotalOrders always counts every order of the customer.
func (s *CRMService) CustomerDetail(ctx context.Context, customerID int64, in OrderFilterInput) (*CustomerDetail, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	filter, form := buildOrderFilter(customer.ID, in)

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}

	total := len(orders)
	if filter.ProductID != 0 || filter.ProductName != "" || filter.Status != "" {
		total, err = s.orders.CountByCustomer(ctx, customer.ID)
		if err != nil {
			return nil, fmt.Errorf("count customer orders: %w", err)
		}
	}

	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	return &CustomerDetail{
		Customer:    customer,
		Orders:      orders,
		TotalOrders: total,
		Filter:      form,
		Products:    products,
	}, nil
}

// --- Batch order creation ---

// NewOrderBatch returns an empty create-order form for a customer.
func (s *CRMService) NewOrderBatch(ctx context.Context, customerID int64) (*OrderBatchForm, error) {
	return s.orderBatchForm(ctx, customerID, nil)
}

func (s *CRMService) orderBatchForm(ctx context.Context, customerID int64, rows []OrderRowInput) (*OrderBatchForm, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	padded := make([]OrderRowInput, OrderBatchSize)
	copy(padded, rows)

	return &OrderBatchForm{
		Customer: customer,
		Products: products,
		Statuses: domain.ValidStatuses(),
		Rows:     padded,
		Errors:   FormErrors{},
	}, nil
}

// CreateOrders validates every non-blank row and stores them together. If
// any row is invalid nothing is stored and the returned form carries one
// message per offending input along with a FormErrors error.
func (s *CRMService) CreateOrders(ctx context.Context, customerID int64, rows []OrderRowInput) (*OrderBatchForm, error) {
	if len(rows) > OrderBatchSize {
		rows = rows[:OrderBatchSize]
	}

	form, err := s.orderBatchForm(ctx, customerID, rows)
	if err != nil {
		return nil, err
	}

	known := make(map[int64]bool, len(form.Products))
	for _, p := range form.Products {
		known[p.ID] = true
	}

	var orders []*domain.Order
	for i, row := range rows {
		if row.isBlank() {
			continue
		}
		productID, ok := parseChoice(row.Product, known)
		switch {
		case strings.TrimSpace(row.Product) == "":
			form.Errors.Add(RowField(i, "product"), "This field is required.")
		case !ok:
			form.Errors.Add(RowField(i, "product"), invalidChoiceMessage)
		}
		status := strings.TrimSpace(row.Status)
		switch {
		case status == "":
			form.Errors.Add(RowField(i, "status"), "This field is required.")
		case !domain.IsValidStatus(status):
			form.Errors.Add(RowField(i, "status"), invalidChoiceMessage)
		}
		orders = append(orders, &domain.Order{
			CustomerID: form.Customer.ID,
			ProductID:  productID,
			Status:     status,
		})
	}

	if len(form.Errors) > 0 {
		return form, form.Errors
	}
	if len(orders) == 0 {
		return form, nil
	}

	if err := s.orders.CreateBatch(ctx, orders); err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			form.Errors.Add(NonFieldErrors, "The orders could not be saved. Check the selected products and try again.")
			return form, form.Errors
		}
		return nil, fmt.Errorf("create orders: %w", err)
	}
	form.Created = orders
	ordersCreatedTotal.Add(float64(len(orders)))

	for _, o := range orders {
		if err := s.producer.PublishOrderCreated(ctx, o); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.created event",
				slog.Int64("order_id", o.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "orders created",
		slog.Int64("customer_id", form.Customer.ID),
		slog.Int("count", len(orders)),
	)

	return form, nil
}

// parseChoice resolves a submitted id against the allowed set.
func parseChoice(raw string, known map[int64]bool) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || !known[id] {
		return 0, false
	}
	return id, true
}

// --- Update / delete ---

// EditOrder returns the update form prefilled with the stored order.
func (s *CRMService) EditOrder(ctx context.Context, orderID int64) (*OrderForm, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	form, err := s.orderForm(ctx, order)
	if err != nil {
		return nil, err
	}
	form.Input = OrderInput{
		Customer: strconv.FormatInt(order.CustomerID, 10),
		Product:  strconv.FormatInt(order.ProductID, 10),
		Status:   order.Status,
		Note:     order.Note,
	}
	return form, nil
}

func (s *CRMService) orderForm(ctx context.Context, order *domain.Order) (*OrderForm, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &OrderForm{
		Order:     order,
		Customers: customers,
		Products:  products,
		Statuses:  domain.ValidStatuses(),
		Errors:    FormErrors{},
	}, nil
}

// UpdateOrder validates in and saves it over the stored order.
func (s *CRMService) UpdateOrder(ctx context.Context, orderID int64, in OrderInput) (*OrderForm, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	form, err := s.orderForm(ctx, order)
	if err != nil {
		return nil, err
	}
	in.Status = strings.TrimSpace(in.Status)
	form.Input = in

	errs, err := validateForm(in)
	if err != nil {
		return nil, err
	}
	form.Errors = errs

	customerIDs := make(map[int64]bool, len(form.Customers))
	for _, c := range form.Customers {
		customerIDs[c.ID] = true
	}
	productIDs := make(map[int64]bool, len(form.Products))
	for _, p := range form.Products {
		productIDs[p.ID] = true
	}

	customerID, ok := parseChoice(in.Customer, customerIDs)
	if !ok && in.Customer != "" {
		form.Errors.Add("customer", invalidChoiceMessage)
	}
	productID, ok := parseChoice(in.Product, productIDs)
	if !ok && in.Product != "" {
		form.Errors.Add("product", invalidChoiceMessage)
	}
	if err := form.Errors.errOrNil(); err != nil {
		return form, err
	}

	previous := order.Status
	updated := *order
	updated.CustomerID = customerID
	updated.ProductID = productID
	updated.Status = in.Status
	updated.Note = strings.TrimSpace(in.Note)

	if err := s.orders.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	form.Order = &updated

	if err := s.producer.PublishOrderUpdated(ctx, &updated, previous); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.updated event",
			slog.Int64("order_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order updated",
		slog.Int64("order_id", updated.ID),
		slog.String("status", updated.Status),
	)
	return form, nil
}

// GetOrder returns an order for the delete confirmation page. It never
// mutates anything.
func (s *CRMService) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// DeleteOrder removes an order.
func (s *CRMService) DeleteOrder(ctx context.Context, orderID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if err := s.orders.Delete(ctx, order.ID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	ordersDeletedTotal.Inc()

	if err := s.producer.PublishOrderDeleted(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.deleted event",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order deleted", slog.Int64("order_id", order.ID))
	return nil
}
