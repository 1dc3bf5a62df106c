package goGate

import (
	"bytes"
	"fmt"

	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles a Gate. A Builder can be built once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	checker   SessionChecker
	router    LocaleRouter
	logger    *zap.Logger
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the session registry client. Without it, Build dials
// Redis.Addr when set.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSessionChecker overrides the JWT session checker.
func (b *Builder) WithSessionChecker(c SessionChecker) *Builder {
	b.checker = c
	return b
}

// WithLocaleRouter sets the locale router consulted before the locale guard.
func (b *Builder) WithLocaleRouter(r LocaleRouter) *Builder {
	b.router = r
	return b
}

// WithLogger sets the logger shared by all guards.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink enables the audit dispatcher with sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the session lookup histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the guard pipeline
// (auth, device, locale).
func (b *Builder) Build() (*Gate, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Gate{
		config: cloneConfig(cfg),
		logger: logger,
	}

	// -------- REDIS --------
	rdb := b.redis
	if rdb == nil && cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		g.ownsRedis = true
	}
	if cfg.Session.Strict && rdb == nil && b.checker == nil {
		return nil, fmt.Errorf("%w: Session Strict requires redis client", ErrInvalidConfig)
	}
	g.redis = rdb
	if rdb != nil {
		g.sessions = session.NewStore(rdb, cfg.Session.RedisPrefix)
		if cfg.SignIn.Throttle {
			g.limiter = rate.New(rdb, rate.Config{
				Prefix:      cfg.Session.RedisPrefix,
				MaxAttempts: cfg.SignIn.MaxAttempts,
				Cooldown:    cfg.SignIn.Cooldown,
				PerIP:       cfg.SignIn.PerIP,
			})
		}
	}

	// -------- TOKENS --------
	jm, err := jwt.NewManager(cfg.JWTManagerConfig())
	if err != nil {
		g.closeRedis()
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	g.tokens = jm

	// -------- OBSERVABILITY --------
	g.metrics = NewMetrics(cfg.Metrics)
	sink := b.auditSink
	if sink != nil && !cfg.Audit.Enabled {
		cfg.Audit.Enabled = true
		if cfg.Audit.BufferSize <= 0 {
			cfg.Audit.BufferSize = DefaultConfig().Audit.BufferSize
		}
	}
	if sink == nil && cfg.Audit.Enabled {
		sink = audit.NewZapSink(logger)
	}
	g.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, sink)
	g.observer = NewObserver(logger, g.metrics, g.audit)

	// -------- COLLABORATORS --------
	checker := b.checker
	if checker == nil {
		var registry SessionRegistry
		if g.sessions != nil {
			registry = g.sessions
		}
		checker = NewJWTSessionChecker(jm, registry, cfg.Session.CookieName, cfg.Session.Strict)
	}
	router := b.router
	if router == nil && cfg.Locale.NegotiateAcceptLanguage {
		router = NewNegotiatingRouter(cfg.LocaleOptions())
	}

	g.pipeline = Chain(
		WithAuth(checker, cfg.AuthOptions(), g.observer),
		WithDeviceOnly(cfg.Device.Disallow, cfg.Locale.CookieName, g.observer),
		WithI18n(router, cfg.LocaleOptions(), g.observer),
	)

	b.built = true
	return g, nil
}

func cloneConfig(c Config) Config {
	out := c
	out.Auth.BypassPrefixes = append([]string(nil), c.Auth.BypassPrefixes...)
	out.Auth.AuthPageMarkers = append([]string(nil), c.Auth.AuthPageMarkers...)
	out.Device.Disallow = append([]DisallowRule(nil), c.Device.Disallow...)
	out.JWT.PrivateKey = bytes.Clone(c.JWT.PrivateKey)
	out.JWT.PublicKey = bytes.Clone(c.JWT.PublicKey)
	return out
}
