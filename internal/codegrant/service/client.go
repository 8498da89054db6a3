package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/domain"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/store"
	"github.com/aussiebroadwan/codegrant/pkg/cryptox"
	"github.com/aussiebroadwan/codegrant/pkg/idx"
	"github.com/aussiebroadwan/codegrant/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrClientExists       = errors.New("client already exists")
	ErrInvalidRedirectURI = errors.New("redirect_uri must be an absolute http(s) URL without a fragment")
)

// ClientAdmin manages the persisted client registry. It is an operator tool;
// the grant itself only ever reads clients through a ClientSource.
type ClientAdmin struct {
	Store store.Store
	Clock clockwork.Clock
}

func (s *ClientAdmin) clock() clockwork.Clock {
	if s.Clock == nil {
		return clockwork.NewRealClock()
	}
	return s.Clock
}

// Clients makes the persisted registry usable as a ClientSource.
func (s *ClientAdmin) Clients(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

// CreateClient registers a client. An empty secret is replaced with a
// generated one; the returned client carries the secret in plain text and
// this is the only time the caller sees a generated value.
func (s *ClientAdmin) CreateClient(ctx context.Context, name, redirectURI, secret string) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	if err := ValidateRedirectURI(redirectURI); err != nil {
		return domain.Client{}, err
	}

	if secret == "" {
		generated, err := cryptox.GenerateSecret(cryptox.SecretSize256)
		if err != nil {
			l.Error("failed to generate client secret", "error", err)
			return domain.Client{}, err
		}
		secret = generated
	}

	c := domain.Client{
		ID:          idx.New().String(),
		Name:        strings.TrimSpace(name),
		RedirectURI: redirectURI,
		Secret:      secret,
		CreatedAt:   s.clock().Now(),
	}

	if err := s.Store.Clients().CreateClient(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Client{}, ErrClientExists
		}
		l.Error("failed to create client", "error", err)
		return domain.Client{}, err
	}

	l.Info("client created", slog.String("client_id", c.ID), slog.String("name", c.Name))
	return c, nil
}

// ImportClients inserts clients with their given ids and secrets in a single
// transaction: either all of them land or none do.
func (s *ClientAdmin) ImportClients(ctx context.Context, clients []domain.Client) error {
	for _, c := range clients {
		if strings.TrimSpace(c.ID) == "" || c.Secret == "" {
			return fmt.Errorf("client %q: id and secret are required", c.ID)
		}
		if err := ValidateRedirectURI(c.RedirectURI); err != nil {
			return fmt.Errorf("client %q: %w", c.ID, err)
		}
	}

	now := s.clock().Now()
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, c := range clients {
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			if err := tx.Clients().CreateClient(ctx, c); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return fmt.Errorf("client %q: %w", c.ID, ErrClientExists)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("clients imported", slog.Int("count", len(clients)))
	return nil
}

// ListClients returns all persisted clients.
func (s *ClientAdmin) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

// DeleteClient removes a client; codes already issued to it stop working at
// the next exchange because the lookup fails.
func (s *ClientAdmin) DeleteClient(ctx context.Context, clientID string) error {
	if err := s.Store.Clients().DeleteClient(ctx, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}

	slogx.FromContext(ctx).Info("client deleted", slog.String("client_id", clientID))
	return nil
}

// ValidateRedirectURI accepts absolute http or https URLs without a fragment.
func ValidateRedirectURI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Fragment != "" {
		return ErrInvalidRedirectURI
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return ErrInvalidRedirectURI
	}
	return nil
}
