package domain

import (
	"fmt"
	"time"
)

// Product categories.
const (
	CategoryIndoor  = "Indoor"
	CategoryOutdoor = "Out Door"
)

// Product is read-only catalogue data. Price is stored in cents.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	DateCreated time.Time `json:"date_created"`
}

// PriceString formats Price as a decimal amount, e.g. 1999 -> "19.99".
func (p *Product) PriceString() string {
	sign := ""
	cents := p.Price
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ValidCategories returns the selectable product categories.
func ValidCategories() []string {
	return []string{CategoryIndoor, CategoryOutdoor}
}
