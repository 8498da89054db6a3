package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/domain"
	"github.com/aussiebroadwan/codegrant/pkg/slogx"
)

// AuthorizeService runs the first leg of the grant: a logged in user approves
// a client and the client receives an authorization code.
type AuthorizeService struct {
	Clients ClientSource
	Tokens  *TokenService
	Code    CodeConfig
}

// AuthorizeRequest carries the resolved session subject (empty when nobody is
// logged in) and the raw client_id and redirect_uri query values.
type AuthorizeRequest struct {
	Subject     string
	ClientID    string
	RedirectURI string
}

// Authorize issues an authorization code for req.ClientID.
//
// Every guard must pass, in order:
//
//  1. the session carries a subject (ErrUnauthenticated)
//  2. client_id and redirect_uri are both present (ErrInvalidRequest)
//  3. client_id is registered (ErrUnknownClient)
//  4. redirect_uri is byte for byte the registered one (ErrRedirectMismatch)
//
// The code's subject is the client id, not the user: it proves that this
// client was approved within the user's session. Any other error, such as the
// client source failing, is returned wrapped and is not a denial.
func (s *AuthorizeService) Authorize(ctx context.Context, req AuthorizeRequest) (*domain.AuthorizationResult, error) {
	log := slogx.FromContext(ctx)

	if strings.TrimSpace(req.Subject) == "" {
		log.Info("authorize denied: no session")
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(req.ClientID) == "" || strings.TrimSpace(req.RedirectURI) == "" {
		log.Info("authorize denied: missing client_id or redirect_uri")
		return nil, ErrInvalidRequest
	}

	registry, err := LoadClientRegistry(ctx, s.Clients)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}

	client, ok := registry.Lookup(req.ClientID)
	if !ok {
		log.Info("authorize denied: unknown client", slog.String("client_id", req.ClientID))
		return nil, ErrUnknownClient
	}
	if client.RedirectURI != req.RedirectURI {
		log.Info("authorize denied: redirect_uri mismatch", slog.String("client_id", client.ID))
		return nil, ErrRedirectMismatch
	}

	code, err := s.Tokens.IssueAuthCode(client.ID, s.Code)
	if err != nil {
		return nil, fmt.Errorf("issue authorization code: %w", err)
	}

	log.Debug("authorization code issued",
		slog.String("client_id", client.ID),
		slog.String("subject", req.Subject),
	)

	return &domain.AuthorizationResult{RedirectURI: client.RedirectURI, Code: code}, nil
}
