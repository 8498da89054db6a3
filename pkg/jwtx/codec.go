package jwtx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Supported HMAC algorithms.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmHS384 = "HS384"
	AlgorithmHS512 = "HS512"
)

// SupportedAlgorithms lists every algorithm accepted by Encode and Decode.
var SupportedAlgorithms = []string{AlgorithmHS256, AlgorithmHS384, AlgorithmHS512}

// ResolveAlgorithm normalises alg and returns the matching HMAC signing method.
func ResolveAlgorithm(alg string) (*jwt.SigningMethodHMAC, error) {
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case AlgorithmHS256:
		return jwt.SigningMethodHS256, nil
	case AlgorithmHS384:
		return jwt.SigningMethodHS384, nil
	case AlgorithmHS512:
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}
}

// Encode signs claims with secret using the HMAC algorithm alg and returns
// the compact JWS form.
func Encode(claims Claims, secret []byte, alg string) (string, error) {
	method, err := ResolveAlgorithm(alg)
	if err != nil {
		return "", err
	}
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	token, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return token, nil
}

// Decode verifies the signature of token with secret under alg and returns
// its claims. Time based claims are NOT validated; expiry is left to the
// caller so that an expired but authentic token still decodes.
func Decode(token string, secret []byte, alg string) (Claims, error) {
	method, err := ResolveAlgorithm(alg)
	if err != nil {
		return Claims{}, err
	}
	if len(secret) == 0 {
		return Claims{}, ErrEmptySecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}

	return claims, nil
}

// classify folds golang-jwt errors into the package sentinels.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrAlgMismatch, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
