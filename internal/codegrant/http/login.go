package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/session"
	"github.com/aussiebroadwan/codegrant/pkg/authsdk"
	"github.com/aussiebroadwan/codegrant/pkg/httpx"
	"github.com/aussiebroadwan/codegrant/pkg/slogx"
)

// LoginHandler serves GET /auth/login. There is no credential check; it
// stands in for whatever front door puts users into a session.
type LoginHandler struct {
	Sessions       *session.Store
	DefaultSubject string
}

// ServeHTTP godoc
//
//	@Summary		Establish a session
//	@Description	Sets the session cookie for the given subject, or the configured default subject.
//	@Tags			Session
//	@Produce		plain
//	@Param			subject	query		string	false	"User identifier to log in as"
//	@Success		200		{string}	string	"ok"
//	@Router			/auth/login [get]
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slogx.FromContext(r.Context())

	if h.Sessions == nil {
		logger.Error("login without a session store", "error", service.ErrSessionUnavailable)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	subject := strings.TrimSpace(r.URL.Query().Get("subject"))
	if subject == "" {
		subject = h.DefaultSubject
	}

	if subject == "" {
		logger.Warn("login without subject, no session set")
	} else if err := h.Sessions.Write(w, subject); err != nil {
		logger.Error("failed to write session", "error", err)
		authsdk.ErrServerError.WriteError(w)
		return
	} else {
		logger.Info("session established", slog.String("subject", subject))
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
