package service

import (
	"context"
	"slices"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/domain"
)

// ClientSource yields the current list of registered clients. It is asked
// again on every authorize and exchange call, so changes apply immediately.
type ClientSource interface {
	Clients(ctx context.Context) ([]domain.Client, error)
}

// ClientSourceFunc adapts a plain function to ClientSource.
type ClientSourceFunc func(ctx context.Context) ([]domain.Client, error)

func (f ClientSourceFunc) Clients(ctx context.Context) ([]domain.Client, error) { return f(ctx) }

// StaticClients is a fixed client list, typically from configuration.
type StaticClients []domain.Client

func (s StaticClients) Clients(context.Context) ([]domain.Client, error) {
	return slices.Clone(s), nil
}

// MultiSource concatenates several sources in order. When two sources know
// the same client id the later one wins.
type MultiSource []ClientSource

func (m MultiSource) Clients(ctx context.Context) ([]domain.Client, error) {
	var all []domain.Client
	for _, src := range m {
		if src == nil {
			continue
		}
		clients, err := src.Clients(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, clients...)
	}
	return all, nil
}

// ClientRegistry is a read-only snapshot of clients indexed by id.
type ClientRegistry struct {
	byID map[string]domain.Client
}

// NewClientRegistry indexes clients. Later duplicates replace earlier ones.
func NewClientRegistry(clients []domain.Client) ClientRegistry {
	byID := make(map[string]domain.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	return ClientRegistry{byID: byID}
}

// LoadClientRegistry takes a fresh snapshot from src.
func LoadClientRegistry(ctx context.Context, src ClientSource) (ClientRegistry, error) {
	clients, err := src.Clients(ctx)
	if err != nil {
		return ClientRegistry{}, err
	}
	return NewClientRegistry(clients), nil
}

// Lookup finds a client by id.
func (r ClientRegistry) Lookup(id string) (domain.Client, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Len is the number of distinct client ids.
func (r ClientRegistry) Len() int { return len(r.byID) }
