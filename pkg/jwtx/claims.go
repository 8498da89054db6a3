package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by every token this module signs: a subject
// plus the issued-at and expiry instants, all at second precision.
type Claims struct {
	jwt.RegisteredClaims
}

// NewClaims builds claims for subject issued at now and expiring at expiresAt.
// A zero expiresAt leaves the exp claim out entirely.
func NewClaims(subject string, now, expiresAt time.Time) Claims {
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if !expiresAt.IsZero() {
		c.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	return c
}

// ValidateExpiry reports ErrExpired once now has reached exp. Claims without
// an exp never expire here; callers that require one check for it themselves.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return nil
	}

	// Second precision on both sides, exp is exclusive.
	if now.Unix() >= c.ExpiresAt.Unix() {
		return ErrExpired
	}

	return nil
}

// ExpiresAfter is true only when an exp claim exists and lies strictly after now.
func (c *Claims) ExpiresAfter(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Unix() > now.Unix()
}
