// Package memory keeps uploaded files in process memory.
package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/storage"
)

type object struct {
	contentType string
	data        []byte
}

// Storage implements storage.Storage using an in-memory map.
type Storage struct {
	mu        sync.RWMutex
	objects   map[string]object
	urlPrefix string
}

func New(urlPrefix string) *Storage {
	return &Storage{
		objects:   make(map[string]object),
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
}

func (s *Storage) Upload(_ context.Context, input *storage.Object) (*storage.Stored, error) {
	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	s.mu.Lock()
	s.objects[input.Key] = object{contentType: input.ContentType, data: data}
	s.mu.Unlock()

	return &storage.Stored{Key: input.Key, URL: s.urlPrefix + "/" + input.Key}, nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	delete(s.objects, key)
	return nil
}

func (s *Storage) URL(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return s.urlPrefix + "/" + key, nil
}

// Has reports whether key is stored.
func (s *Storage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
