package goGate

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/goGate/jwt"
	"gopkg.in/yaml.v3"
)

// Environment mirrors NODE_ENV.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
	EnvTest        Environment = "test"
)

// Config is the complete gate configuration.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Environment Environment   `yaml:"environment"`
	Locale      LocaleConfig  `yaml:"locale"`
	Auth        AuthConfig    `yaml:"auth"`
	Device      DeviceConfig  `yaml:"device"`
	Session     SessionConfig `yaml:"session"`
	JWT         JWTConfig     `yaml:"jwt"`
	SignIn      SignInConfig  `yaml:"signin"`
	Redis       RedisConfig   `yaml:"redis"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Audit       AuditConfig   `yaml:"audit"`
	Server      ServerConfig  `yaml:"server"`
	Log         LogConfig     `yaml:"log"`
}

/*
====================================
GUARD CONFIG
====================================
*/

// LocaleConfig configures the locale guard and its cookie.
type LocaleConfig struct {
	CookieName string        `yaml:"cookie_name"`
	CookieTTL  time.Duration `yaml:"cookie_ttl"`
	// NegotiateAcceptLanguage installs the Accept-Language router when no
	// router is supplied to the Builder.
	NegotiateAcceptLanguage bool `yaml:"negotiate_accept_language"`
}

// AuthConfig configures the auth guard's route classification.
type AuthConfig struct {
	BypassPrefixes  []string `yaml:"bypass_prefixes"`
	AuthPageMarkers []string `yaml:"auth_page_markers"`
	HomePath        string   `yaml:"home_path"`
	LoginPath       string   `yaml:"login_path"`
}

// DeviceConfig holds the desktop disallow table. It ships empty.
type DeviceConfig struct {
	Disallow []DisallowRule `yaml:"disallow"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the session cookie and registry checks.
type SessionConfig struct {
	CookieName  string        `yaml:"cookie_name"`
	TTL         time.Duration `yaml:"ttl"`
	RedisPrefix string        `yaml:"redis_prefix"`
	// Strict requires a token's session to be registered in Redis.
	Strict bool `yaml:"strict"`
}

// JWTConfig configures session token signing.
type JWTConfig struct {
	SigningMethod string        `yaml:"signing_method"` // "hs256" (default) or "ed25519"
	Secret        string        `yaml:"secret"`
	PrivateKey    []byte        `yaml:"-"`
	PublicKey     []byte        `yaml:"-"`
	PrivateKeyPEM string        `yaml:"private_key_file"`
	PublicKeyPEM  string        `yaml:"public_key_file"`
	Issuer        string        `yaml:"issuer"`
	Audience      string        `yaml:"audience"`
	Leeway        time.Duration `yaml:"leeway"`
	KeyID         string        `yaml:"key_id"`
}

// SignInConfig throttles failed sign-ins. Throttling needs Redis and is
// skipped without it.
type SignInConfig struct {
	Throttle    bool          `yaml:"throttle"`
	MaxAttempts int           `yaml:"max_attempts"`
	Cooldown    time.Duration `yaml:"cooldown"`
	PerIP       bool          `yaml:"per_ip"`
}

// RedisConfig points at the session registry. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

// MetricsConfig toggles in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// AuditConfig configures the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// LogConfig selects the zap logger built by the CLI.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ServerConfig configures the bundled HTTP server.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	PublicURL         string        `yaml:"public_url"`
	MetricsPath       string        `yaml:"metrics_path"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the stock configuration. The signing secret is left
// empty and must be supplied (AUTH_SECRET) before Validate passes.
func DefaultConfig() Config {
	auth := DefaultAuthOptions()
	return Config{
		Environment: EnvDevelopment,
		Locale: LocaleConfig{
			CookieName: DefaultLocaleCookie,
			CookieTTL:  365 * 24 * time.Hour,
		},
		Auth: AuthConfig{
			BypassPrefixes:  auth.BypassPrefixes,
			AuthPageMarkers: auth.AuthPageMarkers,
			HomePath:        auth.HomePath,
			LoginPath:       auth.LoginPath,
		},
		Session: SessionConfig{
			CookieName:  DefaultSessionCookie,
			TTL:         30 * 24 * time.Hour,
			RedisPrefix: "gg",
		},
		JWT: JWTConfig{
			SigningMethod: string(jwt.MethodHS256),
		},
		SignIn: SignInConfig{
			Throttle:    true,
			MaxAttempts: 5,
			Cooldown:    15 * time.Minute,
			PerIP:       true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Audit: AuditConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
		Server: ServerConfig{
			Addr:              ":3000",
			MetricsPath:       "/metrics",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports the first configuration problem, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}

	// Locale
	if c.Locale.CookieName == "" {
		return errors.New("Locale CookieName must be set")
	}
	if c.Locale.CookieTTL <= 0 {
		return errors.New("Locale CookieTTL must be > 0")
	}

	// Auth
	if err := validateRoutePath("Auth HomePath", c.Auth.HomePath); err != nil {
		return err
	}
	if err := validateRoutePath("Auth LoginPath", c.Auth.LoginPath); err != nil {
		return err
	}
	for _, p := range c.Auth.BypassPrefixes {
		if err := validateRoutePath("Auth BypassPrefixes entry", p); err != nil {
			return err
		}
	}

	// Device
	for i, r := range c.Device.Disallow {
		if err := validateRoutePath(fmt.Sprintf("Device rule %d source", i), r.SourcePath); err != nil {
			return err
		}
		if err := validateRoutePath(fmt.Sprintf("Device rule %d redirect", i), r.RedirectPath); err != nil {
			return err
		}
	}

	// Session
	if c.Session.CookieName == "" {
		return errors.New("Session CookieName must be set")
	}
	if c.Session.CookieName == c.Locale.CookieName {
		return errors.New("Session and Locale cookies must differ")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}

	// JWT
	switch jwt.SigningMethod(c.JWT.SigningMethod) {
	case jwt.MethodHS256:
		if c.JWT.Secret == "" {
			return errors.New("JWT Secret (AUTH_SECRET) must be set")
		}
		if len(c.JWT.Secret) < 16 {
			return errors.New("JWT Secret must be at least 16 bytes")
		}
	case jwt.MethodEd25519:
		if len(c.JWT.PublicKey) == 0 {
			return errors.New("ed25519 requires PublicKey")
		}
	default:
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be within [0, 2m]")
	}

	// Sign-in
	if c.SignIn.Throttle && (c.SignIn.MaxAttempts <= 0 || c.SignIn.Cooldown <= 0) {
		return errors.New("SignIn MaxAttempts and Cooldown must be > 0 when throttling")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	// Server
	if c.Server.Addr == "" {
		return errors.New("Server Addr must be set")
	}
	if c.Server.PublicURL != "" {
		u, err := url.Parse(c.Server.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("Server PublicURL (AUTH_URL) %q is not an absolute URL", c.Server.PublicURL)
		}
	}
	if c.Environment == EnvProduction && c.Server.PublicURL == "" {
		return errors.New("Server PublicURL (AUTH_URL) must be set in production")
	}

	return nil
}

func validateRoutePath(name, p string) error {
	if p == "" || !strings.HasPrefix(p, "/") {
		return fmt.Errorf("%s must start with '/', got %q", name, p)
	}
	return nil
}

// SecureCookies reports whether cookies should carry the Secure flag: in
// production, or whenever the public URL is https.
func (c *Config) SecureCookies() bool {
	if c.Environment == EnvProduction {
		return true
	}
	return strings.HasPrefix(c.Server.PublicURL, "https://")
}

// AuthOptions projects the auth section onto guard options.
func (c *Config) AuthOptions() AuthOptions {
	return AuthOptions{
		BypassPrefixes:  append([]string(nil), c.Auth.BypassPrefixes...),
		AuthPageMarkers: append([]string(nil), c.Auth.AuthPageMarkers...),
		HomePath:        c.Auth.HomePath,
		LoginPath:       c.Auth.LoginPath,
		LocaleCookie:    c.Locale.CookieName,
	}
}

// LocaleOptions projects the locale section onto guard options.
func (c *Config) LocaleOptions() LocaleOptions {
	return LocaleOptions{
		CookieName: c.Locale.CookieName,
		CookiePath: "/",
		MaxAge:     c.Locale.CookieTTL,
		SameSite:   http.SameSiteLaxMode,
		Secure:     c.SecureCookies(),
	}
}

// JWTManagerConfig projects the token sections onto jwt.Config.
func (c *Config) JWTManagerConfig() jwt.Config {
	cfg := jwt.Config{
		SessionTTL:    c.Session.TTL,
		SigningMethod: jwt.SigningMethod(c.JWT.SigningMethod),
		PrivateKey:    c.JWT.PrivateKey,
		PublicKey:     c.JWT.PublicKey,
		Issuer:        c.JWT.Issuer,
		Audience:      c.JWT.Audience,
		Leeway:        c.JWT.Leeway,
		KeyID:         c.JWT.KeyID,
	}
	if cfg.SigningMethod == jwt.MethodHS256 {
		cfg.PrivateKey = []byte(c.JWT.Secret)
	}
	return cfg
}

// LoadConfig reads a YAML file over DefaultConfig, loads key files, applies
// environment overrides and validates the result. An empty path skips the
// file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	ApplyEnv(&cfg, os.LookupEnv)

	if err := cfg.loadKeyFiles(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays NODE_ENV, AUTH_SECRET, AUTH_URL, REDIS_ADDR and
// REDIS_PASSWORD onto cfg using lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("NODE_ENV"); ok && v != "" {
		cfg.Environment = Environment(v)
	}
	if v, ok := lookup("AUTH_SECRET"); ok && v != "" {
		cfg.JWT.Secret = v
	}
	if v, ok := lookup("AUTH_URL"); ok && v != "" {
		cfg.Server.PublicURL = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		cfg.Redis.Password = v
	}
}

func (c *Config) loadKeyFiles() error {
	if c.JWT.PrivateKeyPEM != "" {
		b, err := os.ReadFile(c.JWT.PrivateKeyPEM)
		if err != nil {
			return fmt.Errorf("%w: private key: %v", ErrInvalidConfig, err)
		}
		c.JWT.PrivateKey = b
	}
	if c.JWT.PublicKeyPEM != "" {
		b, err := os.ReadFile(c.JWT.PublicKeyPEM)
		if err != nil {
			return fmt.Errorf("%w: public key: %v", ErrInvalidConfig, err)
		}
		c.JWT.PublicKey = b
	}
	return nil
}
