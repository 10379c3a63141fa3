package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Rohit-bisht-rise/shopmanagement/pkg/slug"
)

// MaxAvatarBytes caps profile picture uploads.
const MaxAvatarBytes = 5 << 20

var (
	ErrAvatarTooLarge  = errors.New("avatar exceeds 5 MiB")
	ErrAvatarNotImage  = errors.New("avatar is not a jpeg, png, gif or webp image")
	allowedAvatarTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
)

// Avatar is a validated image ready for Upload.
type Avatar struct {
	Data        []byte
	ContentType string
	Extension   string
}

// ReadAvatar reads at most MaxAvatarBytes from r and checks by content
// sniffing that it is a supported image.
func ReadAvatar(r io.Reader) (*Avatar, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if len(data) > MaxAvatarBytes {
		return nil, ErrAvatarTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedAvatarTypes...) {
		return nil, ErrAvatarNotImage
	}
	return &Avatar{Data: data, ContentType: mt.String(), Extension: mt.Extension()}, nil
}

// Input wraps the avatar for Storage.Upload under key.
func (a *Avatar) Input(key string) *Object {
	return &Object{
		Key:         key,
		ContentType: a.ContentType,
		Size:        int64(len(a.Data)),
		Data:        bytes.NewReader(a.Data),
	}
}

// AvatarKey names a customer's profile picture object. The random suffix
// keeps browsers from showing a cached previous picture.
func AvatarKey(customerID int64, name, ext string) string {
	base := slug.Generate(name)
	if base == "" {
		base = "customer"
	}
	return fmt.Sprintf("avatars/%d-%s-%s%s", customerID, base, uuid.NewString(), ext)
}
