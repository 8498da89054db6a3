// Package minter provides the access-token sources the token exchange hands
// out once a code has been accepted.
package minter

import (
	"context"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
)

// Local signs access tokens itself with a secret separate from the one used
// for authorization codes.
type Local struct {
	Tokens    *service.TokenService
	Secret    string
	Algorithm string
	Subject   string
	TTL       int
	Unit      service.TimeUnit
}

// Mint issues a fresh token. Every call yields a new iat and exp.
func (m *Local) Mint(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Tokens.Issue(m.Subject, m.Secret, m.Algorithm, m.TTL, m.Unit)
}
