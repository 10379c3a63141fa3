// Package storage abstracts where uploaded profile pictures live.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("storage: object not found")

// Storage keeps customer avatars addressable by key. Keys come from
// AvatarKey and are relative paths such as avatars/42-peter-<uuid>.png.
type Storage interface {
	Upload(ctx context.Context, obj *Object) (*Stored, error)
	// Delete returns ErrNotFound for an unknown key.
	Delete(ctx context.Context, key string) error
	// URL is the path a browser fetches the avatar from.
	URL(ctx context.Context, key string) (string, error)
}

// Object is a sniffed image ready to be written. Size may be 0 when unknown.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

type Stored struct {
	Key string
	URL string
}
