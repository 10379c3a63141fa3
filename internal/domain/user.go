package domain

import "time"

// User is a login account. Role is resolved from group membership and is
// empty when the user belongs to no group.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is what the session middleware resolves for the current request.
// The zero value is an anonymous visitor.
type Identity struct {
	UserID     int64
	Username   string
	Role       string
	CustomerID int64
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// HasCustomer reports whether the user is linked to a Customer profile.
func (i Identity) HasCustomer() bool {
	return i.CustomerID != 0
}
