package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/codegrant/internal/codegrant/http"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/minter"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/session"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/store"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/store/drivers/sqlite"
	"github.com/aussiebroadwan/codegrant/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application wires configuration, storage and the HTTP surface together.
type Application struct {
	cfg    Config
	logger *slog.Logger
	clock  clockwork.Clock

	db store.Store // nil when clients come from config only

	tokenService     *service.TokenService
	authorizeService *service.AuthorizeService
	exchangeService  *service.ExchangeService
	clients          service.ClientSource
	sessions         *session.Store

	server *http.Server
	router *httpapi.Router
}

// New validates cfg and builds every dependency. Nothing listens yet.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	app := &Application{
		cfg:   cfg,
		clock: clockwork.NewRealClock(),
		logger: slogx.New(slogx.Config{
			Service: "codegrant",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.closeDatabase()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("codegrant starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"clients_from_config", len(app.cfg.Clients),
		"client_store", app.db != nil,
		"access_token_mode", app.cfg.AccessToken.Mode,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		_ = app.closeDatabase()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down codegrant...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.closeDatabase(); err != nil {
		return err
	}

	app.logger.Info("codegrant stopped")
	return nil
}

// initDatabase opens the optional sqlite client registry and migrates it.
func (app *Application) initDatabase() error {
	if app.cfg.DatabaseFile == "" {
		return nil
	}

	db, err := OpenClientStore(app.cfg.DatabaseFile)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("client store ready", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) closeDatabase() error {
	if app.db == nil {
		return nil
	}
	err := app.db.Close()
	app.db = nil
	if err != nil {
		app.logger.Error("error closing database", "error", err)
	}
	return err
}

func (app *Application) initServices() error {
	app.tokenService = &service.TokenService{Clock: app.clock}

	// Stored clients come after config clients so the database wins on
	// duplicate ids.
	sources := service.MultiSource{service.StaticClients(app.cfg.Clients)}
	if app.db != nil {
		sources = append(sources, &service.ClientAdmin{Store: app.db, Clock: app.clock})
	}
	app.clients = sources

	m, err := app.newMinter()
	if err != nil {
		return err
	}

	app.authorizeService = &service.AuthorizeService{
		Clients: app.clients,
		Tokens:  app.tokenService,
		Code:    app.cfg.AuthCode,
	}
	app.exchangeService = &service.ExchangeService{
		Clients: app.clients,
		Tokens:  app.tokenService,
		Code:    app.cfg.AuthCode,
		Minter:  m,
	}

	sessions, err := session.NewStore(app.cfg.Cookie, app.clock)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}
	app.sessions = sessions

	return nil
}

func (app *Application) newMinter() (service.AccessTokenMinter, error) {
	at := app.cfg.AccessToken
	switch at.Mode {
	case MinterRemote:
		return minter.NewRemote(at.URL, at.Timeout), nil
	case MinterLocal:
		return &minter.Local{
			Tokens:    app.tokenService,
			Secret:    at.SecretPassword,
			Algorithm: at.Algorithm,
			Subject:   at.Subject,
			TTL:       at.Exp,
			Unit:      at.Unit,
		}, nil
	default:
		return nil, fmt.Errorf("unknown access token mode %q", at.Mode)
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.sessions, app.logger)

	router.Clients = app.clients
	router.AuthorizeService = app.authorizeService
	router.ExchangeService = app.exchangeService
	router.LoginSubject = app.cfg.LoginSubject
	router.AuthorizeLimit = app.cfg.AuthorizeLimit
	router.TokenLimit = app.cfg.TokenLimit
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// OpenClientStore opens the sqlite client registry at file and applies any
// pending migrations.
func OpenClientStore(file string) (*sqlite.Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", file)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	return db, nil
}
