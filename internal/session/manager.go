package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
)

// Session is the state loaded for one request.
type Session struct {
	ID   string
	Data Data

	dirty bool
}

// UserID returns the logged-in user, or 0 for an anonymous visitor.
func (s *Session) UserID() int64 {
	return s.Data.UserID
}

// AddFlash queues a message for the next page render.
func (s *Session) AddFlash(level, message string) {
	s.Data.Flashes = append(s.Data.Flashes, Flash{Level: level, Message: message})
	s.dirty = true
}

// PopFlashes returns and clears queued messages.
func (s *Session) PopFlashes() []Flash {
	if len(s.Data.Flashes) == 0 {
		return nil
	}
	flashes := s.Data.Flashes
	s.Data.Flashes = nil
	s.dirty = true
	return flashes
}

// Manager binds a Store to the session cookie.
type Manager struct {
	store  Store
	cookie string
	ttl    time.Duration
	secure bool
}

// NewManager creates a Manager. secure sets the cookie Secure flag.
func NewManager(store Store, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, cookie: cookieName, ttl: ttl, secure: secure}
}

// Load returns the session named by the request cookie. A missing cookie or
// an unknown id yields an empty anonymous session that is only persisted
// once it is saved.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookie)
	if err != nil || c.Value == "" {
		return &Session{}, nil
	}

	data, err := m.store.Get(ctx, c.Value)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &Session{ID: c.Value, Data: *data}, nil
}

// Save persists s when it changed, assigning an id to new sessions. Every
// save restarts the store TTL, so the cookie is reissued with a matching
// MaxAge.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if !s.dirty {
		return nil
	}
	if s.ID == "" {
		s.ID = NewID()
		s.Data.Created = time.Now().UTC()
	}
	if err := m.store.Save(ctx, s.ID, &s.Data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.setCookie(w, s.ID, m.ttl)
	s.dirty = false
	return nil
}

// Login drops the current session id and starts a new authenticated one,
// keeping queued flashes.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, s *Session, userID int64) error {
	if s.ID != "" {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return fmt.Errorf("rotate session: %w", err)
		}
	}
	s.ID = ""
	s.Data.UserID = userID
	s.dirty = true
	return m.Save(ctx, w, s)
}

// Destroy deletes the session and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.ID != "" {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return fmt.Errorf("destroy session: %w", err)
		}
	}
	*s = Session{}
	m.setCookie(w, "", -1)
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, ttl time.Duration) {
	c := &http.Cookie{
		Name:     m.cookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, c)
}
