package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/session"
	"github.com/aussiebroadwan/codegrant/pkg/httpx"
	"github.com/aussiebroadwan/codegrant/pkg/slogx"

	_ "github.com/aussiebroadwan/codegrant/api/codegrant" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	sessions     *session.Store

	Clients          service.ClientSource
	AuthorizeService *service.AuthorizeService
	ExchangeService  *service.ExchangeService

	// LoginSubject is used by /auth/login when the request names nobody.
	LoginSubject string

	AuthorizeLimit httpx.RateLimitConfig
	TokenLimit     httpx.RateLimitConfig
}

// NewRouter creates a router. A nil sessions store leaves the session
// middleware off; the grant endpoints then answer 500.
func NewRouter(buildVersion string, sessions *session.Store, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slogx.Discard()
	}

	r := &Router{
		Mux:            http.NewServeMux(),
		buildVersion:   buildVersion,
		startTime:      time.Now(),
		logger:         logger,
		sessions:       sessions,
		AuthorizeLimit: httpx.LenientLimit,
		TokenLimit:     httpx.StrictLimit,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if sessions != nil {
		r.middlewares = append(r.middlewares, session.Middleware(sessions))
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerGrant()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			codegrant Authorization Code API
//	@version		0.1.0
//	@description	Two step OAuth2 authorization code grant: a session backed authorization endpoint and a header authenticated token exchange.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/codegrant
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8086
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerGrant() {
	r.Mux.Handle("GET /auth/login", &LoginHandler{
		Sessions:       r.sessions,
		DefaultSubject: r.LoginSubject,
	})

	// Browser facing, polled by redirects: lenient per IP.
	r.Mux.Handle("GET /auth/authorization",
		httpx.Chain(&AuthorizeHandler{AuthorizeService: r.AuthorizeService},
			httpx.RateLimitByIP(r.AuthorizeLimit),
		),
	)

	// Secret guessing happens here, so limit per IP and client.
	r.Mux.Handle("GET /auth/token",
		httpx.Chain(&TokenHandler{ExchangeService: r.ExchangeService},
			httpx.RateLimitByIPAndHeader(r.TokenLimit, "client_id"),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))

	var codeCfg service.CodeConfig
	var tokens *service.TokenService
	if r.AuthorizeService != nil {
		codeCfg = r.AuthorizeService.Code
		tokens = r.AuthorizeService.Tokens
	}
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.Clients, tokens, codeCfg))
}
