package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/domain"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/store"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "codegrant.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestClientsRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created := time.Unix(1700000000, 0).UTC()
	c1 := domain.Client{ID: "C1", Name: "Market Place", RedirectURI: "https://ex/cb", Secret: "s1", CreatedAt: created}
	c2 := domain.Client{ID: "C2", RedirectURI: "https://other/cb", Secret: "s2", CreatedAt: created.Add(time.Second)}

	require.NoError(t, s.Clients().CreateClient(ctx, c1))
	require.NoError(t, s.Clients().CreateClient(ctx, c2))

	t.Run("get by id", func(t *testing.T) {
		got, err := s.Clients().GetClientByID(ctx, "C1")
		require.NoError(t, err)
		require.Equal(t, c1, got)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Clients().GetClientByID(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("list is ordered by creation", func(t *testing.T) {
		all, err := s.Clients().ListClients(ctx)
		require.NoError(t, err)
		require.Equal(t, []domain.Client{c1, c2}, all)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := s.Clients().CreateClient(ctx, domain.Client{ID: "C1", RedirectURI: "x", Secret: "y"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Clients().DeleteClient(ctx, "C2"))
		require.ErrorIs(t, s.Clients().DeleteClient(ctx, "C2"), store.ErrNotFound)
	})
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Clients().CreateClient(ctx, domain.Client{ID: "T1", RedirectURI: "https://t/cb", Secret: "t"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Clients().GetClientByID(ctx, "T1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Clients().CreateClient(ctx, domain.Client{ID: "T2", RedirectURI: "https://t/cb", Secret: "t"})
	}))

	got, err := s.Clients().GetClientByID(ctx, "T2")
	require.NoError(t, err)
	require.Equal(t, "https://t/cb", got.RedirectURI)
}
