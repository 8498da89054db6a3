package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/codegrant/pkg/cryptox"
	"github.com/aussiebroadwan/codegrant/pkg/slogx"
)

// AccessTokenMinter supplies the access token handed out after a successful
// exchange. The token is opaque here.
type AccessTokenMinter interface {
	Mint(ctx context.Context) (string, error)
}

// MinterFunc adapts a plain function to AccessTokenMinter.
type MinterFunc func(ctx context.Context) (string, error)

func (f MinterFunc) Mint(ctx context.Context) (string, error) { return f(ctx) }

// ExchangeService runs the second leg of the grant: a client trades an
// authorization code and its secret for an access token.
type ExchangeService struct {
	Clients ClientSource
	Tokens  *TokenService
	Code    CodeConfig
	Minter  AccessTokenMinter
}

// ExchangeRequest holds the client_id, code and secret request fields.
type ExchangeRequest struct {
	ClientID string
	Code     string
	Secret   string
}

// Exchange validates req and returns a freshly minted access token.
//
// The minter is called at most once and only after every guard has passed.
// Its failure comes back as ErrUpstreamMint so callers can tell a broken
// backend from a bad request. Codes are not tracked: an unexpired code may be
// exchanged again.
func (s *ExchangeService) Exchange(ctx context.Context, req ExchangeRequest) (string, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(req.ClientID) == "" || strings.TrimSpace(req.Code) == "" || req.Secret == "" {
		log.Info("exchange denied: missing client_id, code or secret")
		return "", ErrInvalidRequest
	}

	if !s.Tokens.IsValid(req.Code, s.Code) {
		log.Info("exchange denied: code expired or malformed",
			slog.String("client_id", req.ClientID),
			slog.String("code_fp", cryptox.Fingerprint(req.Code)),
		)
		return "", ErrExpiredOrMalformedCode
	}

	registry, err := LoadClientRegistry(ctx, s.Clients)
	if err != nil {
		return "", fmt.Errorf("load clients: %w", err)
	}

	client, ok := registry.Lookup(req.ClientID)
	if !ok {
		log.Info("exchange denied: unknown client", slog.String("client_id", req.ClientID))
		return "", ErrUnknownClient
	}
	if client.Secret == "" || !cryptox.EqualSecret(client.Secret, req.Secret) {
		log.Info("exchange denied: secret mismatch", slog.String("client_id", client.ID))
		return "", ErrSecretMismatch
	}

	token, err := s.Minter.Mint(ctx)
	if err != nil {
		log.Error("access token mint failed", slog.String("client_id", client.ID), slog.Any("error", err))
		return "", errors.Join(ErrUpstreamMint, err)
	}
	if token == "" {
		log.Error("access token mint returned nothing", slog.String("client_id", client.ID))
		return "", fmt.Errorf("%w: empty token", ErrUpstreamMint)
	}

	log.Debug("access token issued", slog.String("client_id", client.ID))
	return token, nil
}
