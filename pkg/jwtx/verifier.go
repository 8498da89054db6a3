package jwtx

import (
	"errors"
	"time"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed      = errors.New("jwtx: malformed token")
	ErrAlgMismatch    = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig     = errors.New("jwtx: invalid signature")
	ErrUnsupportedAlg = errors.New("jwtx: unsupported algorithm")
	ErrEmptySecret    = errors.New("jwtx: empty secret")

	ErrExpired = errors.New("jwtx: token expired")
)

// HMACVerifier checks signature and, when present, expiry of HS* tokens.
type HMACVerifier struct {
	secret []byte
	alg    string
	now    func() time.Time
}

// NewVerifierHMAC creates a verifier for tokens produced by an HMACSigner with
// the same secret and algorithm. now supplies the reference time for expiry;
// nil means time.Now.
func NewVerifierHMAC(secret []byte, alg string, now func() time.Time) (*HMACVerifier, error) {
	method, err := ResolveAlgorithm(alg)
	if err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if now == nil {
		now = time.Now
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &HMACVerifier{secret: key, alg: method.Alg(), now: now}, nil
}

// Verify decodes token and rejects it if it has expired.
func (v *HMACVerifier) Verify(token string) (Claims, error) {
	claims, err := Decode(token, v.secret, v.alg)
	if err != nil {
		return Claims{}, err
	}

	if err := claims.ValidateExpiry(v.now()); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
