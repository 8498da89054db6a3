package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for the client registry. Drivers
// implement it and expose sub-repositories so that transactional and plain
// access look the same to callers.
type Store interface {
	Clients() Clients

	ApplyMigrations() error

	// WithTx runs fn in a transaction, committing when it returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is the subset of Store available inside a transaction.
type Tx interface {
	Clients() Clients
}

type Clients interface {
	// GetClientByID returns ErrNotFound for unknown ids.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns every client ordered by creation.
	ListClients(ctx context.Context) ([]domain.Client, error)

	// CreateClient returns ErrAlreadyExists when the id is taken.
	CreateClient(ctx context.Context, c domain.Client) error

	// DeleteClient returns ErrNotFound when nothing was deleted.
	DeleteClient(ctx context.Context, id string) error
}
