// Package session keeps the logged-in user's identifier in a cookie.
//
// In signed mode the cookie value is a short HS256 token whose subject is the
// user and whose expiry mirrors the cookie max age. Anything that fails to
// verify reads as no session at all.
package session

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/codegrant/pkg/jwtx"
	"github.com/jonboulle/clockwork"
)

var (
	ErrEmptySubject = errors.New("session: empty subject")
	ErrNoSecret     = errors.New("session: signed cookies need a secret")
	ErrNoName       = errors.New("session: cookie name is required")
)

// Config mirrors the cookie section of the service configuration.
type Config struct {
	Name     string
	Secret   string
	HTTPOnly bool
	Secure   bool
	Signed   bool
	MaxAge   time.Duration
}

// Store reads and writes the session cookie.
type Store struct {
	cfg      Config
	clock    clockwork.Clock
	signer   jwtx.Signer
	verifier jwtx.Verifier
}

// NewStore validates cfg and prepares the cookie signer. A nil clock means
// the real one.
func NewStore(cfg Config, clock clockwork.Clock) (*Store, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, ErrNoName
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Store{cfg: cfg, clock: clock}
	if !cfg.Signed {
		return s, nil
	}

	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}

	signer, err := jwtx.NewSignerHMAC([]byte(cfg.Secret), jwtx.AlgorithmHS256)
	if err != nil {
		return nil, err
	}
	verifier, err := jwtx.NewVerifierHMAC([]byte(cfg.Secret), jwtx.AlgorithmHS256, clock.Now)
	if err != nil {
		return nil, err
	}
	s.signer, s.verifier = signer, verifier

	return s, nil
}

// Name is the cookie name.
func (s *Store) Name() string { return s.cfg.Name }

// Write sets the session cookie for subject.
func (s *Store) Write(w http.ResponseWriter, subject string) error {
	if strings.TrimSpace(subject) == "" {
		return ErrEmptySubject
	}

	now := s.clock.Now()
	value := subject

	if s.cfg.Signed {
		var exp time.Time
		if s.cfg.MaxAge > 0 {
			exp = now.Add(s.cfg.MaxAge)
		}
		token, err := s.signer.Sign(jwtx.NewClaims(subject, now, exp))
		if err != nil {
			return err
		}
		value = token
	}

	c := &http.Cookie{
		Name:     s.cfg.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: s.cfg.HTTPOnly,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cfg.MaxAge > 0 {
		c.MaxAge = int(s.cfg.MaxAge / time.Second)
		c.Expires = now.Add(s.cfg.MaxAge).UTC()
	}

	http.SetCookie(w, c)
	return nil
}

// Read returns the subject carried by the request's session cookie.
// Missing, tampered or expired cookies all report false.
func (s *Store) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.cfg.Name)
	if err != nil || c.Value == "" {
		return "", false
	}

	if !s.cfg.Signed {
		return c.Value, true
	}

	claims, err := s.verifier.Verify(c.Value)
	if err != nil || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
