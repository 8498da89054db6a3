package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/domain"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
env: production
log:
  level: debug
http:
  port: 9090
jwt:
  authCode:
    secretPassword: RIJJQuDtUa7ksfSTcHGyNkZhN29snfTC
    exp: 35
    algorithm: HS512
    unit: days
cookie:
  name: SSID_OAUTH
  secretPassword: thebest
  conf:
    httpOnly: true
    secure: false
    maxAge: 12h
    signed: true
clients:
  - id: l2mp/a5NDlMw1b9wQvIgg==
    name: Market Place
    redirect_uri: https://external/auth
    secretPassword: secret
  - id: C1
    name: Example
    redirect_uri: https://ex/cb
    secret: s1
access_token:
  mode: local
  secretPassword: secretPassword
  subject: "1234"
login:
  subject: "1234"
ratelimit:
  token:
    requests: 0
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "codegrant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML), nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "production", cfg.Env)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 15*time.Second, cfg.ShutdownGracePeriod)

	require.Equal(t, service.CodeConfig{
		SecretPassword: "RIJJQuDtUa7ksfSTcHGyNkZhN29snfTC",
		Exp:            35,
		Algorithm:      "HS512",
		Unit:           "days",
	}, cfg.AuthCode)

	require.Equal(t, "thebest", cfg.Cookie.Secret)
	require.False(t, cfg.Cookie.Secure)
	require.True(t, cfg.Cookie.HTTPOnly)
	require.Equal(t, 12*time.Hour, cfg.Cookie.MaxAge)

	require.Equal(t, []domain.Client{
		{ID: "l2mp/a5NDlMw1b9wQvIgg==", Name: "Market Place", RedirectURI: "https://external/auth", Secret: "secret"},
		{ID: "C1", Name: "Example", RedirectURI: "https://ex/cb", Secret: "s1"},
	}, cfg.Clients)

	require.Equal(t, MinterLocal, cfg.AccessToken.Mode)
	require.Equal(t, 1, cfg.AccessToken.Exp)
	require.Equal(t, service.TimeUnit("days"), cfg.AccessToken.Unit)
	require.Equal(t, "1234", cfg.LoginSubject)

	require.True(t, cfg.AuthorizeLimit.Enabled())
	require.False(t, cfg.TokenLimit.Enabled())
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	t.Setenv("CODEGRANT_JWT_AUTHCODE_SECRETPASSWORD", "from-env")
	t.Setenv("CODEGRANT_HTTP_PORT", "7000")
	t.Setenv("CODEGRANT_COOKIE_CONF_SIGNED", "false")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse([]string{"--config", writeConfig(t, sampleYAML), "--port", "7100", "--log-level", "warn"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)

	require.Equal(t, "from-env", cfg.AuthCode.SecretPassword)
	require.False(t, cfg.Cookie.Signed)
	require.Equal(t, 7100, cfg.Port, "flags beat env")
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat, "unset flags keep lower layers")
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	require.Equal(t, 8086, cfg.Port)
	require.Equal(t, 5, cfg.AuthCode.Exp)
	require.Equal(t, "HS512", cfg.AuthCode.Algorithm)
	require.Equal(t, service.TimeUnit("minutes"), cfg.AuthCode.Unit)
	require.Equal(t, "SSID_OAUTH", cfg.Cookie.Name)
	require.True(t, cfg.Cookie.Signed)
	require.Equal(t, 24*time.Hour, cfg.Cookie.MaxAge)
	require.Equal(t, 10*time.Second, cfg.AccessToken.Timeout)
	require.Empty(t, cfg.DatabaseFile)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestValidateAggregates(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Port: 8086,
		AuthCode: service.CodeConfig{
			Algorithm: "RS256",
			Unit:      "fortnights",
		},
		Clients: []domain.Client{
			{ID: "C1", RedirectURI: "https://ex/cb", Secret: "s1"},
			{ID: "C1", RedirectURI: "ftp://ex/cb"},
		},
		AccessToken: AccessTokenConfig{Mode: MinterRemote},
	}
	cfg.Cookie.Signed = true

	err := cfg.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)

	msg := err.Error()
	for _, want := range []string{
		"jwt.authCode.secretPassword is required",
		"jwt.authCode.algorithm",
		"jwt.authCode.exp must be positive",
		"jwt.authCode.unit",
		"cookie.name is required",
		"cookie.secretPassword is required",
		`duplicate id "C1"`,
		"clients[1]: secret is required",
		"access_token.url is required",
	} {
		require.True(t, strings.Contains(msg, want), "missing %q in:\n%s", want, msg)
	}
	require.ErrorIs(t, err, service.ErrUnknownUnit)
	require.ErrorIs(t, err, service.ErrInvalidRedirectURI)
}
