package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/codegrant/pkg/httpx"
	"github.com/aussiebroadwan/codegrant/pkg/slogx"
)

// State is the resolved session of a request. An empty Subject means the
// visitor is not logged in.
type State struct {
	Subject string
}

// Authenticated reports whether a user is logged in.
func (s State) Authenticated() bool { return s.Subject != "" }

type ctxKey struct{}

// WithState stores st in ctx.
func WithState(ctx context.Context, st State) context.Context {
	return context.WithValue(ctx, ctxKey{}, st)
}

// FromContext returns the session resolved by Middleware. The boolean is
// false when no middleware ran, which is a wiring error rather than an
// anonymous visitor.
func FromContext(ctx context.Context) (State, bool) {
	st, ok := ctx.Value(ctxKey{}).(State)
	return st, ok
}

// Middleware resolves the session cookie once per request.
func Middleware(store *Store) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := store.Read(r)
			if !ok {
				if _, err := r.Cookie(store.Name()); err == nil {
					slogx.FromContext(r.Context()).Debug("session cookie rejected")
				}
			} else {
				slogx.FromContext(r.Context()).Debug("session resolved", slog.String("subject", subject))
			}

			next.ServeHTTP(w, r.WithContext(WithState(r.Context(), State{Subject: subject})))
		})
	}
}
