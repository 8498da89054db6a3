package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/codegrant/internal/codegrant/domain"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/service"
	"github.com/aussiebroadwan/codegrant/internal/codegrant/session"
	"github.com/aussiebroadwan/codegrant/pkg/httpx"
	"github.com/aussiebroadwan/codegrant/pkg/jwtx"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// CODEGRANT_JWT_AUTHCODE_SECRETPASSWORD.
const EnvPrefix = "CODEGRANT"

const (
	MinterLocal  = "local"
	MinterRemote = "remote"
)

type Config struct {
	Env       string // development, staging, production (default: development)
	LogLevel  string // debug, info, warn, error (default: info)
	LogFormat string // json, text (default: json)

	Port                int           // HTTP server port (default: 8086)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 15s)

	DatabaseFile string // Optional: sqlite client registry, empty means config clients only

	AuthCode     service.CodeConfig
	Cookie       session.Config
	Clients      []domain.Client
	AccessToken  AccessTokenConfig
	LoginSubject string

	AuthorizeLimit httpx.RateLimitConfig
	TokenLimit     httpx.RateLimitConfig
}

// AccessTokenConfig selects where exchanged access tokens come from.
type AccessTokenConfig struct {
	Mode string // local or remote

	// remote
	URL     string
	Timeout time.Duration

	// local
	SecretPassword string
	Algorithm      string
	Exp            int
	Unit           service.TimeUnit
	Subject        string
}

type clientConfig struct {
	ID          string `mapstructure:"id" yaml:"id"`
	Name        string `mapstructure:"name" yaml:"name"`
	RedirectURI string `mapstructure:"redirect_uri" yaml:"redirect_uri"`
	Secret      string `mapstructure:"secret" yaml:"secret"`

	// SecretPassword is the older spelling of Secret.
	SecretPassword string `mapstructure:"secretPassword" yaml:"secretPassword,omitempty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("http.port", 8086)
	v.SetDefault("http.shutdown_grace_period", 15*time.Second)
	v.SetDefault("database.file", "")

	v.SetDefault("jwt.authCode.exp", 5)
	v.SetDefault("jwt.authCode.algorithm", jwtx.AlgorithmHS512)
	v.SetDefault("jwt.authCode.unit", "minutes")

	v.SetDefault("cookie.name", "SSID_OAUTH")
	v.SetDefault("cookie.conf.httpOnly", true)
	v.SetDefault("cookie.conf.secure", true)
	v.SetDefault("cookie.conf.maxAge", 24*time.Hour)
	v.SetDefault("cookie.conf.signed", true)

	v.SetDefault("access_token.mode", MinterLocal)
	v.SetDefault("access_token.timeout", 10*time.Second)
	v.SetDefault("access_token.algorithm", jwtx.AlgorithmHS512)
	v.SetDefault("access_token.exp", 1)
	v.SetDefault("access_token.unit", "days")

	v.SetDefault("ratelimit.authorize.requests", httpx.LenientLimit.Requests)
	v.SetDefault("ratelimit.authorize.window", httpx.LenientLimit.Window)
	v.SetDefault("ratelimit.authorize.burst", httpx.LenientLimit.Burst)
	v.SetDefault("ratelimit.token.requests", httpx.StrictLimit.Requests)
	v.SetDefault("ratelimit.token.window", httpx.StrictLimit.Window)
	v.SetDefault("ratelimit.token.burst", httpx.StrictLimit.Burst)
}

// Flags registers the command line overrides understood by LoadConfig.
func Flags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "path to a YAML config file")
	fs.Int("port", 0, "HTTP listen port")
	fs.String("db", "", "sqlite database holding registered clients")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-format", "", "log format (json, text)")
}

var flagKeys = map[string]string{
	"port":       "http.port",
	"db":         "database.file",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// LoadConfig reads configuration from, in increasing priority: defaults, the
// YAML file at path, CODEGRANT_* environment variables and explicitly set
// flags. path may be empty and flags may be nil.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if path == "" {
			if f := flags.Lookup("config"); f != nil {
				path = f.Value.String()
			}
		}
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %q: %w", name, err)
			}
		}
	}

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", path, err)
		}
	}

	var clients []clientConfig
	if err := v.UnmarshalKey("clients", &clients); err != nil {
		return Config{}, fmt.Errorf("decode clients: %w", err)
	}

	cfg := Config{
		Env:                 v.GetString("env"),
		LogLevel:            v.GetString("log.level"),
		LogFormat:           v.GetString("log.format"),
		Port:                v.GetInt("http.port"),
		ShutdownGracePeriod: v.GetDuration("http.shutdown_grace_period"),
		DatabaseFile:        v.GetString("database.file"),
		AuthCode: service.CodeConfig{
			SecretPassword: v.GetString("jwt.authCode.secretPassword"),
			Exp:            v.GetInt("jwt.authCode.exp"),
			Algorithm:      v.GetString("jwt.authCode.algorithm"),
			Unit:           service.TimeUnit(v.GetString("jwt.authCode.unit")),
		},
		Cookie: session.Config{
			Name:     v.GetString("cookie.name"),
			Secret:   v.GetString("cookie.secretPassword"),
			HTTPOnly: v.GetBool("cookie.conf.httpOnly"),
			Secure:   v.GetBool("cookie.conf.secure"),
			Signed:   v.GetBool("cookie.conf.signed"),
			MaxAge:   v.GetDuration("cookie.conf.maxAge"),
		},
		AccessToken: AccessTokenConfig{
			Mode:           strings.ToLower(v.GetString("access_token.mode")),
			URL:            v.GetString("access_token.url"),
			Timeout:        v.GetDuration("access_token.timeout"),
			SecretPassword: v.GetString("access_token.secretPassword"),
			Algorithm:      v.GetString("access_token.algorithm"),
			Exp:            v.GetInt("access_token.exp"),
			Unit:           service.TimeUnit(v.GetString("access_token.unit")),
			Subject:        v.GetString("access_token.subject"),
		},
		LoginSubject: v.GetString("login.subject"),
		AuthorizeLimit: httpx.RateLimitConfig{
			Requests: v.GetInt("ratelimit.authorize.requests"),
			Window:   v.GetDuration("ratelimit.authorize.window"),
			Burst:    v.GetInt("ratelimit.authorize.burst"),
		},
		TokenLimit: httpx.RateLimitConfig{
			Requests: v.GetInt("ratelimit.token.requests"),
			Window:   v.GetDuration("ratelimit.token.window"),
			Burst:    v.GetInt("ratelimit.token.burst"),
		},
	}

	for _, c := range clients {
		secret := c.Secret
		if secret == "" {
			secret = c.SecretPassword
		}
		cfg.Clients = append(cfg.Clients, domain.Client{
			ID:          c.ID,
			Name:        c.Name,
			RedirectURI: c.RedirectURI,
			Secret:      secret,
		})
	}

	return cfg, nil
}

// Validate reports every problem with cfg at once.
func (c Config) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	if c.Port <= 0 || c.Port > 65535 {
		add("http.port: %d out of range", c.Port)
	}

	if c.AuthCode.SecretPassword == "" {
		add("jwt.authCode.secretPassword is required")
	}
	if _, err := jwtx.ResolveAlgorithm(c.AuthCode.Algorithm); err != nil {
		add("jwt.authCode.algorithm: %w", err)
	}
	if c.AuthCode.Exp <= 0 {
		add("jwt.authCode.exp must be positive")
	}
	if err := c.AuthCode.Unit.Validate(); err != nil {
		add("jwt.authCode.unit: %w", err)
	}

	if strings.TrimSpace(c.Cookie.Name) == "" {
		add("cookie.name is required")
	}
	if c.Cookie.Signed && c.Cookie.Secret == "" {
		add("cookie.secretPassword is required for signed cookies")
	}
	if c.Cookie.MaxAge < 0 {
		add("cookie.conf.maxAge must not be negative")
	}

	seen := make(map[string]bool, len(c.Clients))
	for i, cl := range c.Clients {
		switch {
		case cl.ID == "":
			add("clients[%d]: id is required", i)
		case seen[cl.ID]:
			add("clients[%d]: duplicate id %q", i, cl.ID)
		}
		seen[cl.ID] = true

		if cl.Secret == "" {
			add("clients[%d]: secret is required", i)
		}
		if err := service.ValidateRedirectURI(cl.RedirectURI); err != nil {
			add("clients[%d]: %w", i, err)
		}
	}

	switch c.AccessToken.Mode {
	case MinterLocal:
		if c.AccessToken.SecretPassword == "" {
			add("access_token.secretPassword is required in local mode")
		}
		if _, err := jwtx.ResolveAlgorithm(c.AccessToken.Algorithm); err != nil {
			add("access_token.algorithm: %w", err)
		}
		if c.AccessToken.Exp <= 0 {
			add("access_token.exp must be positive")
		}
		if err := c.AccessToken.Unit.Validate(); err != nil {
			add("access_token.unit: %w", err)
		}
	case MinterRemote:
		if c.AccessToken.URL == "" {
			add("access_token.url is required in remote mode")
		}
	default:
		add("access_token.mode: unknown mode %q", c.AccessToken.Mode)
	}

	for name, rl := range map[string]httpx.RateLimitConfig{"authorize": c.AuthorizeLimit, "token": c.TokenLimit} {
		if rl.Requests > 0 && rl.Window <= 0 {
			add("ratelimit.%s.window must be positive", name)
		}
	}

	return result.ErrorOrNil()
}

// ErrInvalidConfig wraps Validate failures surfaced by New.
var ErrInvalidConfig = errors.New("invalid configuration")
