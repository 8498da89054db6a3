package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
	"github.com/aussiebroadwan/codegrant/pkg/authsdk"
	"github.com/aussiebroadwan/codegrant/pkg/httpx"
	"github.com/aussiebroadwan/codegrant/pkg/slogx"
)

// TokenHandler serves GET /auth/token. Credentials arrive as headers.
type TokenHandler struct {
	ExchangeService *service.ExchangeService
}

// ServeHTTP godoc
//
//	@Summary		Token exchange endpoint
//	@Description	Exchanges an authorization code and client secret for an access token.
//	@Tags			OAuth2
//	@Produce		json
//	@Param			client_id	header		string					true	"Client identifier"
//	@Param			code		header		string					true	"Authorization code"
//	@Param			secret		header		string					true	"Client secret (secret_pass is accepted as well)"
//	@Success		200			{object}	authsdk.TokenResponse	"access_token"
//	@Failure		401			{object}	authsdk.ErrorResponse	"Unauthorized"
//	@Failure		502			{object}	authsdk.ErrorResponse	"Access token issuer failed"
//	@Header			200			{string}	Cache-Control			"no-store"
//	@Router			/auth/token [get]
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ExchangeService == nil {
		authsdk.ErrServerError.WriteError(w)
		return
	}

	token, err := h.ExchangeService.Exchange(r.Context(), service.ExchangeRequest{
		ClientID: r.Header.Get("client_id"),
		Code:     r.Header.Get("code"),
		Secret:   httpx.FirstHeader(r, "secret", "secret_pass"),
	})
	if err != nil {
		writeGrantError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{AccessToken: token})
}

// writeGrantError collapses every refusal into the same 401 so callers learn
// nothing about which check failed.
func writeGrantError(w http.ResponseWriter, r *http.Request, err error) {
	logger := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrUpstreamMint):
		logger.Error("access token mint failed", "error", err)
		authsdk.ErrBadGateway.WriteError(w)
	case service.IsDenial(err):
		authsdk.ErrUnauthorized.WriteError(w)
	default:
		logger.Error("grant request failed", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
