// Package auth issues and checks password-reset links.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer        = "shopmanagement"
	resetAudience = "password-reset"
)

var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// ResetClaims are carried by a reset token. Fingerprint binds the token to
// the password hash it was issued against, so it stops verifying once the
// password changes.
type ResetClaims struct {
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// ResetTokenManager signs and verifies HS256 reset tokens.
type ResetTokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewResetTokenManager(secret string, expiry time.Duration) *ResetTokenManager {
	return &ResetTokenManager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

func (m *ResetTokenManager) fingerprint(passwordHash string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(passwordHash))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

// Issue creates a token for userID valid until the expiry elapses or the
// password hash changes.
func (m *ResetTokenManager) Issue(userID int64, passwordHash string) (string, error) {
	now := m.now().UTC()
	claims := &ResetClaims{
		Fingerprint: m.fingerprint(passwordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{resetAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry, subject and fingerprint of token.
// Any failure yields ErrInvalidResetToken.
func (m *ResetTokenManager) Verify(token string, userID int64, passwordHash string) error {
	claims := &ResetClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(resetAudience),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return ErrInvalidResetToken
	}

	if claims.Subject != strconv.FormatInt(userID, 10) {
		return ErrInvalidResetToken
	}
	if !hmac.Equal([]byte(claims.Fingerprint), []byte(m.fingerprint(passwordHash))) {
		return ErrInvalidResetToken
	}
	return nil
}

// EncodeUID encodes a user id for the reset URL.
func EncodeUID(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(s string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("decode uid: %w", err)
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("decode uid: invalid id %q", raw)
	}
	return id, nil
}
