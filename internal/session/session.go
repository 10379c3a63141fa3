// Package session keeps per-visitor state (login and flash messages) in a
// server-side Store keyed by an opaque cookie value.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Flash levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Data is the persisted part of a session.
type Data struct {
	UserID  int64     `json:"user_id,omitempty"`
	Flashes []Flash   `json:"flashes,omitempty"`
	Created time.Time `json:"created"`
}

// Store persists session data. Get returns an apperrors NotFound error for
// unknown or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}
