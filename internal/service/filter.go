package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/repository"
)

// OrderFilterInput holds the query parameters of the customer detail page.
type OrderFilterInput struct {
	Product string
	Status  string
}

// IsEmpty reports whether no criterion was given.
func (in OrderFilterInput) IsEmpty() bool {
	return strings.TrimSpace(in.Product) == "" && strings.TrimSpace(in.Status) == ""
}

// OrderFilterForm echoes the filter inputs back to the page.
type OrderFilterForm struct {
	Product  string
	Status   string
	Statuses []string
	Errors   FormErrors
}

// buildOrderFilter turns the filter inputs into a repository filter scoped to
// customerID. A numeric product is matched as a product id, anything else as
// a case-insensitive name fragment. An unknown status or a non-positive
// product id is reported on the form and no criterion is applied.
func buildOrderFilter(customerID int64, in OrderFilterInput) (repository.OrderFilter, *OrderFilterForm) {
	form := &OrderFilterForm{
		Product:  strings.TrimSpace(in.Product),
		Status:   strings.TrimSpace(in.Status),
		Statuses: domain.ValidStatuses(),
		Errors:   FormErrors{},
	}
	filter := repository.OrderFilter{CustomerID: customerID}

	if form.Status != "" && !domain.IsValidStatus(form.Status) {
		form.Errors.Add("status", fmt.Sprintf(
			"Select a valid choice. %s is not one of the available choices.", form.Status))
		return filter, form
	}

	if form.Product != "" {
		id, err := strconv.ParseInt(form.Product, 10, 64)
		switch {
		case err != nil:
			filter.ProductName = form.Product
		case id > 0:
			filter.ProductID = id
		default:
			form.Errors.Add("product", invalidChoiceMessage)
			return repository.OrderFilter{CustomerID: customerID}, form
		}
	}
	filter.Status = form.Status
	return filter, form
}
