package domain

import "time"

// Customer is a CRM contact, optionally linked to a login account.
type Customer struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"user_id,omitempty"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	ProfilePic  string    `json:"profile_pic,omitempty"`
	DateCreated time.Time `json:"date_created"`
}

// DisplayName falls back to the email when no name was entered.
func (c *Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Email
}
