package http

import (
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/session"
	"github.com/aussiebroadwan/codegrant/pkg/authsdk"
	"github.com/aussiebroadwan/codegrant/pkg/slogx"
)

// AuthorizeHandler serves GET /auth/authorization.
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
}

// ServeHTTP godoc
//
//	@Summary		Authorization code endpoint
//	@Description	Issues a short lived authorization code for a registered client and redirects to its redirect_uri.
//	@Description	Any refusal is a uniform 401.
//	@Tags			OAuth2
//	@Produce		json
//	@Param			client_id		query		string					true	"Registered client identifier"
//	@Param			redirect_uri	query		string					true	"Must equal the registered redirect URI byte for byte"
//	@Success		302				{string}	string					"Redirect to redirect_uri with code"
//	@Failure		401				{object}	authsdk.ErrorResponse	"Unauthorized"
//	@Failure		429				{object}	authsdk.ErrorResponse	"Too Many Requests"
//	@Router			/auth/authorization [get]
func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slogx.FromContext(ctx)

	if h.AuthorizeService == nil {
		authsdk.ErrServerError.WriteError(w)
		return
	}

	st, ok := session.FromContext(ctx)
	if !ok {
		logger.Error("session middleware is not attached", "error", service.ErrSessionUnavailable)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	query := r.URL.Query()
	res, err := h.AuthorizeService.Authorize(ctx, service.AuthorizeRequest{
		Subject:     st.Subject,
		ClientID:    query.Get("client_id"),
		RedirectURI: query.Get("redirect_uri"),
	})
	if err != nil {
		writeGrantError(w, r, err)
		return
	}

	redirectURL, err := buildAuthorizeRedirect(res.RedirectURI, res.Code)
	if err != nil {
		logger.Error("failed to build redirect URL", "error", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// buildAuthorizeRedirect adds code to baseURI, keeping any query it has.
func buildAuthorizeRedirect(baseURI, code string) (string, error) {
	u, err := url.Parse(baseURI)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("code", code)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
