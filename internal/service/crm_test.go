package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/event"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/repository"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
)

func TestAdminDashboard(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	orders := []domain.Order{
		{ID: 1, Status: domain.OrderStatusPending},
		{ID: 2, Status: domain.OrderStatusDelivered},
		{ID: 3, Status: domain.OrderStatusOutForDelivery},
	}
	customers := []domain.Customer{{ID: 1, Name: "Peter"}, {ID: 2, Name: "Sara"}}
	f.orders.On("List", ctx, repository.OrderFilter{}).Return(orders, nil)
	f.customers.On("List", ctx).Return(customers, nil)

	d, err := f.svc.AdminDashboard(ctx)

	require.NoError(t, err)
	assert.Len(t, d.Orders, 3)
	assert.Len(t, d.Customers, 2)
	assert.Equal(t, 3, d.Total)
	assert.Equal(t, 1, d.Delivered)
	assert.Equal(t, 1, d.Pending)
}

func TestCustomerDashboard_ScopedToOwnCustomer(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(9)).Return(&domain.Customer{ID: 9, Name: "Peter"}, nil)
	f.orders.On("List", ctx, repository.OrderFilter{CustomerID: 9}).
		Return([]domain.Order{{ID: 4, CustomerID: 9, Status: domain.OrderStatusDelivered}}, nil)

	d, err := f.svc.CustomerDashboard(ctx, domain.Identity{UserID: 3, Role: domain.RoleCustomer, CustomerID: 9})

	require.NoError(t, err)
	assert.Equal(t, int64(9), d.Customer.ID)
	assert.Equal(t, 1, d.Delivered)
	f.customers.AssertNotCalled(t, "List", mock.Anything)
}

func TestCustomerDashboard_NoLinkedCustomer(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByUserID", ctx, int64(3)).Return(nil, apperrors.NotFound("customer", int64(3)))

	_, err := f.svc.CustomerDashboard(ctx, domain.Identity{UserID: 3, Role: domain.RoleCustomer})

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCustomerDetail_NotFound(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(42)).Return(nil, apperrors.NotFound("customer", int64(42)))

	d, err := f.svc.CustomerDetail(ctx, 42, OrderFilterInput{})

	require.Error(t, err)
	assert.Nil(t, d)
	assert.True(t, apperrors.IsNotFound(err))
	f.orders.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCustomerDetail_FilterByStatusKeepsUnfilteredTotal(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	delivered := []domain.Order{
		{ID: 1, CustomerID: 5, Status: domain.OrderStatusDelivered},
		{ID: 4, CustomerID: 5, Status: domain.OrderStatusDelivered},
	}
	f.customers.On("GetByID", ctx, int64(5)).Return(&domain.Customer{ID: 5}, nil)
	f.orders.On("List", ctx, repository.OrderFilter{CustomerID: 5, Status: domain.OrderStatusDelivered}).
		Return(delivered, nil)
	f.orders.On("CountByCustomer", ctx, int64(5)).Return(6, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)

	d, err := f.svc.CustomerDetail(ctx, 5, OrderFilterInput{Status: "Delivered"})

	require.NoError(t, err)
	assert.Len(t, d.Orders, 2)
	for _, o := range d.Orders {
		assert.Equal(t, domain.OrderStatusDelivered, o.Status)
	}
	assert.Equal(t, 6, d.TotalOrders)
	assert.Equal(t, "Delivered", d.Filter.Status)
	assert.Empty(t, d.Filter.Errors)
}

func TestCustomerDetail_UnfilteredSkipsCount(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(5)).Return(&domain.Customer{ID: 5}, nil)
	f.orders.On("List", ctx, repository.OrderFilter{CustomerID: 5}).
		Return([]domain.Order{{ID: 1}, {ID: 2}, {ID: 3}}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)

	d, err := f.svc.CustomerDetail(ctx, 5, OrderFilterInput{})

	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalOrders)
	f.orders.AssertNotCalled(t, "CountByCustomer", mock.Anything, mock.Anything)
}

func TestCustomerDetail_UnknownStatusReportsError(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(5)).Return(&domain.Customer{ID: 5}, nil)
	f.orders.On("List", ctx, repository.OrderFilter{CustomerID: 5}).
		Return([]domain.Order{{ID: 1}}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)

	d, err := f.svc.CustomerDetail(ctx, 5, OrderFilterInput{Product: "Ball", Status: "Shipped"})

	require.NoError(t, err)
	assert.Contains(t, d.Filter.Errors["status"], "Shipped is not one of the available choices")
	assert.Len(t, d.Orders, 1)
}

func TestBuildOrderFilter(t *testing.T) {
	tests := []struct {
		name string
		in   OrderFilterInput
		want repository.OrderFilter
	}{
		{"empty", OrderFilterInput{}, repository.OrderFilter{CustomerID: 1}},
		{"product id", OrderFilterInput{Product: "3"}, repository.OrderFilter{CustomerID: 1, ProductID: 3}},
		{"product name", OrderFilterInput{Product: " grill "}, repository.OrderFilter{CustomerID: 1, ProductName: "grill"}},
		{"status", OrderFilterInput{Status: "Pending"}, repository.OrderFilter{CustomerID: 1, Status: "Pending"}},
		{"both", OrderFilterInput{Product: "ball", Status: "Out for delivery"},
			repository.OrderFilter{CustomerID: 1, ProductName: "ball", Status: "Out for delivery"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, form := buildOrderFilter(1, tt.in)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, form.Errors)
		})
	}
}

func TestBuildOrderFilter_NonPositiveProductID(t *testing.T) {
	for _, product := range []string{"0", "-3", "-0"} {
		t.Run(product, func(t *testing.T) {
			got, form := buildOrderFilter(1, OrderFilterInput{Product: " " + product, Status: "Pending"})

			assert.Equal(t, repository.OrderFilter{CustomerID: 1}, got)
			assert.Equal(t, invalidChoiceMessage, form.Errors["product"])
			assert.Equal(t, product, form.Product)
		})
	}
}

func TestNewOrderBatch(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(5)).Return(&domain.Customer{ID: 5}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)

	form, err := f.svc.NewOrderBatch(ctx, 5)

	require.NoError(t, err)
	assert.Len(t, form.Rows, OrderBatchSize)
	assert.Equal(t, domain.ValidStatuses(), form.Statuses)
}

func validRows() []OrderRowInput {
	rows := make([]OrderRowInput, OrderBatchSize)
	for i := range rows {
		rows[i] = OrderRowInput{Product: "1", Status: domain.OrderStatusPending}
	}
	return rows
}

func TestCreateOrders_InvalidRowRejectsBatch(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(5)).Return(&domain.Customer{ID: 5}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)

	rows := validRows()
	rows[2].Product = "999"

	form, err := f.svc.CreateOrders(ctx, 5, rows)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	errs, ok := AsFormErrors(err)
	require.True(t, ok)
	assert.Len(t, errs, 1)
	assert.Equal(t, invalidChoiceMessage, form.RowError(2, "product"))
	assert.Empty(t, form.RowError(1, "product"))
	assert.Equal(t, "999", form.Rows[2].Product)
	f.orders.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	assert.Empty(t, f.events.Events(event.TopicOrderCreated))
}

func TestCreateOrders_RowErrors(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(5)).Return(&domain.Customer{ID: 5}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)

	rows := []OrderRowInput{
		{Product: "1", Status: ""},
		{Product: "", Status: "Pending"},
		{Product: "abc", Status: "Lost"},
	}

	form, err := f.svc.CreateOrders(ctx, 5, rows)

	require.Error(t, err)
	assert.Equal(t, "This field is required.", form.RowError(0, "status"))
	assert.Equal(t, "This field is required.", form.RowError(1, "product"))
	assert.Equal(t, invalidChoiceMessage, form.RowError(2, "product"))
	assert.Equal(t, invalidChoiceMessage, form.RowError(2, "status"))
}

func TestCreateOrders_Success(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(5)).Return(&domain.Customer{ID: 5}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)
	f.orders.On("CreateBatch", ctx, mock.AnythingOfType("[]*domain.Order")).
		Run(func(args mock.Arguments) {
			for i, o := range args.Get(1).([]*domain.Order) {
				o.ID = int64(100 + i)
			}
		}).
		Return(nil)

	rows := []OrderRowInput{
		{Product: "1", Status: "Pending"},
		{},
		{Product: "3", Status: "Delivered"},
		{Product: " ", Status: " "},
	}

	form, err := f.svc.CreateOrders(ctx, 5, rows)

	require.NoError(t, err)
	require.Len(t, form.Created, 2)
	assert.Equal(t, int64(5), form.Created[0].CustomerID)
	assert.Equal(t, int64(1), form.Created[0].ProductID)
	assert.Equal(t, int64(3), form.Created[1].ProductID)
	assert.Equal(t, domain.OrderStatusDelivered, form.Created[1].Status)
	assert.Len(t, f.events.Events(event.TopicOrderCreated), 2)
}

func TestCreateOrders_AllBlank(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(5)).Return(&domain.Customer{ID: 5}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)

	form, err := f.svc.CreateOrders(ctx, 5, make([]OrderRowInput, OrderBatchSize))

	require.NoError(t, err)
	assert.Empty(t, form.Created)
	f.orders.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestCreateOrders_UnknownCustomer(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(77)).Return(nil, apperrors.NotFound("customer", int64(77)))

	_, err := f.svc.CreateOrders(ctx, 77, validRows())

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateOrders_StoreRejectsReference(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.customers.On("GetByID", ctx, int64(5)).Return(&domain.Customer{ID: 5}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)
	f.orders.On("CreateBatch", ctx, mock.Anything).
		Return(apperrors.InvalidInput("order 1 references a missing customer or product"))

	form, err := f.svc.CreateOrders(ctx, 5, []OrderRowInput{{Product: "1", Status: "Pending"}})

	require.Error(t, err)
	assert.NotEmpty(t, form.Errors.NonField())
	assert.Empty(t, f.events.Events(event.TopicOrderCreated))
}

func TestCreateOrders_PublishFailureDoesNotFail(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()
	f.events.Err = errors.New("broker down")

	f.customers.On("GetByID", ctx, int64(5)).Return(&domain.Customer{ID: 5}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)
	f.orders.On("CreateBatch", ctx, mock.Anything).Return(nil)

	form, err := f.svc.CreateOrders(ctx, 5, []OrderRowInput{{Product: "2", Status: "Pending"}})

	require.NoError(t, err)
	assert.Len(t, form.Created, 1)
}

func TestEditOrder(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.orders.On("GetByID", ctx, int64(7)).Return(&domain.Order{ID: 7, CustomerID: 5, ProductID: 2, Status: "Pending"}, nil)
	f.customers.On("List", ctx).Return([]domain.Customer{{ID: 5}}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)

	form, err := f.svc.EditOrder(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, OrderInput{Customer: "5", Product: "2", Status: "Pending"}, form.Input)
}

func TestUpdateOrder_Success(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.orders.On("GetByID", ctx, int64(7)).Return(&domain.Order{ID: 7, CustomerID: 5, ProductID: 2, Status: "Pending"}, nil)
	f.customers.On("List", ctx).Return([]domain.Customer{{ID: 5}, {ID: 6}}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)
	f.orders.On("Update", ctx, mock.MatchedBy(func(o *domain.Order) bool {
		return o.ID == 7 && o.CustomerID == 6 && o.ProductID == 3 && o.Status == domain.OrderStatusDelivered
	})).Return(nil)

	form, err := f.svc.UpdateOrder(ctx, 7, OrderInput{Customer: "6", Product: "3", Status: "Delivered"})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, form.Order.Status)

	events := f.events.Events(event.TopicOrderUpdated)
	require.Len(t, events, 1)
	var data event.OrderData
	require.NoError(t, events[0].UnmarshalData(&data))
	assert.Equal(t, domain.OrderStatusPending, data.PreviousStatus)
}

func TestUpdateOrder_Invalid(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.orders.On("GetByID", ctx, int64(7)).Return(&domain.Order{ID: 7, CustomerID: 5, ProductID: 2, Status: "Pending"}, nil)
	f.customers.On("List", ctx).Return([]domain.Customer{{ID: 5}}, nil)
	f.products.On("List", ctx).Return(testProducts(), nil)

	form, err := f.svc.UpdateOrder(ctx, 7, OrderInput{Customer: "99", Product: "", Status: "Shipped"})

	require.Error(t, err)
	assert.Equal(t, invalidChoiceMessage, form.Errors["customer"])
	assert.Equal(t, "This field is required.", form.Errors["product"])
	assert.Equal(t, invalidChoiceMessage, form.Errors["status"])
	f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateOrder_NotFound(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.orders.On("GetByID", ctx, int64(8)).Return(nil, apperrors.NotFound("order", int64(8)))

	_, err := f.svc.UpdateOrder(ctx, 8, OrderInput{})

	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteOrder(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.orders.On("GetByID", ctx, int64(7)).Return(&domain.Order{ID: 7, CustomerID: 5}, nil).Once()
	f.orders.On("Delete", ctx, int64(7)).Return(nil)
	f.orders.On("GetByID", ctx, int64(7)).Return(nil, apperrors.NotFound("order", int64(7)))

	require.NoError(t, f.svc.DeleteOrder(ctx, 7))
	assert.Len(t, f.events.Events(event.TopicOrderDeleted), 1)

	_, err := f.svc.GetOrder(ctx, 7)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteOrder_NotFound(t *testing.T) {
	f := newTestCRMService()
	ctx := context.Background()

	f.orders.On("GetByID", ctx, int64(7)).Return(nil, apperrors.NotFound("order", int64(7)))

	err := f.svc.DeleteOrder(ctx, 7)

	assert.True(t, apperrors.IsNotFound(err))
	f.orders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
