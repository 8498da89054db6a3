package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/domain"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/store/drivers/sqlite"
	"github.com/aussiebroadwan/codegrant/pkg/idx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func newClientAdmin(t *testing.T) *ClientAdmin {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "clients.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &ClientAdmin{Store: st, Clock: clockwork.NewFakeClockAt(t0)}
}

func TestClientAdmin(t *testing.T) {
	ctx := context.Background()
	admin := newClientAdmin(t)

	created, err := admin.CreateClient(ctx, " Market Place ", "https://external/auth", "")
	require.NoError(t, err)
	require.Equal(t, "Market Place", created.Name)
	require.Len(t, created.Secret, 43, "generated secret")
	_, err = idx.Parse(created.ID)
	require.NoError(t, err)

	fixed, err := admin.CreateClient(ctx, "fixed", "https://ex/cb", "s1")
	require.NoError(t, err)
	require.Equal(t, "s1", fixed.Secret)

	all, err := admin.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	t.Run("persisted clients feed the grant", func(t *testing.T) {
		svc := newAuthorizeService(admin)

		res, err := svc.Authorize(ctx, AuthorizeRequest{Subject: "u1", ClientID: fixed.ID, RedirectURI: "https://ex/cb"})
		require.NoError(t, err)
		require.NotEmpty(t, res.Code)
	})

	t.Run("rejects bad redirect uris", func(t *testing.T) {
		for _, uri := range []string{"", "/relative", "ftp://ex/cb", "https://ex/cb#frag", "https://"} {
			_, err := admin.CreateClient(ctx, "bad", uri, "")
			require.ErrorIs(t, err, ErrInvalidRedirectURI, "uri %q", uri)
		}
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, admin.DeleteClient(ctx, fixed.ID))
		require.ErrorIs(t, admin.DeleteClient(ctx, fixed.ID), ErrClientNotFound)
	})
}

func TestImportClientsIsAtomic(t *testing.T) {
	ctx := context.Background()
	admin := newClientAdmin(t)

	require.NoError(t, admin.ImportClients(ctx, []domain.Client{
		{ID: "C1", RedirectURI: "https://ex/cb", Secret: "s1"},
	}))

	err := admin.ImportClients(ctx, []domain.Client{
		{ID: "C2", RedirectURI: "https://two/cb", Secret: "s2"},
		{ID: "C1", RedirectURI: "https://ex/cb", Secret: "dup"},
	})
	require.ErrorIs(t, err, ErrClientExists)

	all, err := admin.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "C2 must be rolled back with the duplicate")

	err = admin.ImportClients(ctx, []domain.Client{{ID: "C3", RedirectURI: "https://ex/cb"}})
	require.Error(t, err, "secret required")
}
