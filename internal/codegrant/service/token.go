package service

import (
	"fmt"

	"github.com/aussiebroadwan/codegrant/pkg/jwtx"
	"github.com/jonboulle/clockwork"
)

// CodeConfig is the jwt.authCode configuration: how authorization codes are
// signed and how long they live.
type CodeConfig struct {
	SecretPassword string
	Exp            int
	Algorithm      string
	Unit           TimeUnit
}

// TokenService issues and checks signed tokens. It holds no state besides
// the clock; secrets and lifetimes arrive with every call.
type TokenService struct {
	Clock clockwork.Clock
}

func (s *TokenService) clock() clockwork.Clock {
	if s == nil || s.Clock == nil {
		return clockwork.NewRealClock()
	}
	return s.Clock
}

// Issue signs a token for subject, issued now and expiring ttl units later.
func (s *TokenService) Issue(subject, secret, algorithm string, ttl int, unit TimeUnit) (string, error) {
	now := s.clock().Now()

	exp, err := unit.AddTo(now, ttl)
	if err != nil {
		return "", err
	}

	token, err := jwtx.Encode(jwtx.NewClaims(subject, now, exp), []byte(secret), algorithm)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// IssueAuthCode issues an authorization code under cfg.
func (s *TokenService) IssueAuthCode(subject string, cfg CodeConfig) (string, error) {
	return s.Issue(subject, cfg.SecretPassword, cfg.Algorithm, cfg.Exp, cfg.Unit)
}

// Decode checks the signature of token and returns its claims. It fails with
// jwtx.ErrInvalidSig or jwtx.ErrMalformed; expiry is not considered.
func (s *TokenService) Decode(token, secret, algorithm string) (jwtx.Claims, error) {
	return jwtx.Decode(token, []byte(secret), algorithm)
}

// IsValid reports whether token decodes under cfg and has not yet expired.
// It never fails: a bad signature, garbage input and an expired token are
// all just false.
func (s *TokenService) IsValid(token string, cfg CodeConfig) bool {
	claims, err := s.Decode(token, cfg.SecretPassword, cfg.Algorithm)
	if err != nil {
		return false
	}
	return claims.ExpiresAfter(s.clock().Now())
}
