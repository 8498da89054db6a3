package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
	"github.com/aussiebroadwan/codegrant/pkg/authsdk"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	cfg, err := LoadConfig(writeConfig(t, sampleYAML), nil)
	require.NoError(t, err)
	cfg.LogLevel = "error"
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuthCode.SecretPassword = ""

	_, err := New(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApplicationFlow(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "clients.db")

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.closeDatabase() })

	ctx := context.Background()

	// A client registered after startup is usable straight away.
	st, err := OpenClientStore(cfg.DatabaseFile)
	require.NoError(t, err)
	admin := &service.ClientAdmin{Store: st, Clock: clockwork.NewRealClock()}
	stored, err := admin.CreateClient(ctx, "stored", "https://stored/cb", "stored-secret")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	c := authsdk.NewSDKClient(srv.URL)
	require.NoError(t, c.Login(ctx, ""))

	for _, tc := range []struct{ id, redirect, secret string }{
		{"l2mp/a5NDlMw1b9wQvIgg==", "https://external/auth", "secret"},
		{stored.ID, "https://stored/cb", "stored-secret"},
	} {
		code, err := c.Authorize(ctx, tc.id, tc.redirect)
		require.NoError(t, err)

		tok, err := c.ExchangeCode(ctx, tc.id, code, tc.secret)
		require.NoError(t, err)
		require.NotEmpty(t, tok.AccessToken)

		claims, err := (&service.TokenService{}).Decode(tok.AccessToken, "secretPassword", "HS512")
		require.NoError(t, err)
		require.Equal(t, "1234", claims.Subject)
	}

	res, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	_ = res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestApplicationRemoteMinter(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"from-upstream"}`))
	}))
	t.Cleanup(upstream.Close)

	cfg := testConfig(t)
	cfg.AccessToken = AccessTokenConfig{Mode: MinterRemote, URL: upstream.URL}

	application, err := New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := authsdk.NewSDKClient(srv.URL)
	require.NoError(t, c.Login(ctx, "u1"))

	code, err := c.Authorize(ctx, "C1", "https://ex/cb")
	require.NoError(t, err)

	tok, err := c.ExchangeCode(ctx, "C1", code, "s1")
	require.NoError(t, err)
	require.Equal(t, "from-upstream", tok.AccessToken)

	upstream.Close()
	_, err = c.ExchangeCode(ctx, "C1", code, "s1")
	require.ErrorIs(t, err, authsdk.ErrBadGateway)
}
