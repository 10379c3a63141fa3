package domain

import "time"

// Order status constants. The values are shown to users as-is.
const (
	OrderStatusPending        = "Pending"
	OrderStatusOutForDelivery = "Out for delivery"
	OrderStatusDelivered      = "Delivered"
)

// Order links one customer to one product.
//
// CustomerName and ProductName are filled by list queries that join the
// related rows; they are not persisted.
type Order struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	ProductID   int64     `json:"product_id"`
	Status      string    `json:"status"`
	Note        string    `json:"note,omitempty"`
	DateCreated time.Time `json:"date_created"`

	CustomerName string `json:"customer_name,omitempty"`
	ProductName  string `json:"product_name,omitempty"`
}

// ValidStatuses returns all order statuses in workflow order.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
	}
}

// IsValidStatus checks if a status string is one of ValidStatuses.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// OrderStats are the dashboard counters.
type OrderStats struct {
	Total     int
	Delivered int
	Pending   int
}

// CountOrders tallies orders by status.
func CountOrders(orders []Order) OrderStats {
	stats := OrderStats{Total: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case OrderStatusDelivered:
			stats.Delivered++
		case OrderStatusPending:
			stats.Pending++
		}
	}
	return stats
}
