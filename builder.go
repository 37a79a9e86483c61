package rotor

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/rotorauth/rotor/internal"
	"github.com/rotorauth/rotor/internal/rate"
	"github.com/rotorauth/rotor/jwt"
	"github.com/rotorauth/rotor/refresh"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens before the first Engine method call.
type Builder struct {
	config Config
	redis  *redis.Client

	store    refresh.Store
	identity IdentityStore

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing the default refresh store and
// the rate limiter.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithStore overrides the refresh token store. When set, a Redis client is
// only required if a throttle is enabled.
func (b *Builder) WithStore(store refresh.Store) *Builder {
	b.store = store
	return b
}

// WithIdentityStore supplies the external identity system.
func (b *Builder) WithIdentityStore(is IdentityStore) *Builder {
	b.identity = is
	return b
}

// WithAuditSink supplies the audit sink. Ignored unless auditing is enabled
// in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the ValidateAccess latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the dependency graph, and returns
// a ready Engine. A Builder is single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.identity == nil {
		return nil, errors.New("identity store required")
	}

	throttling := cfg.Security.EnableRotationThrottle || cfg.Security.EnableIPThrottle
	if b.redis == nil {
		if b.store == nil {
			return nil, errors.New("redis client required")
		}
		if throttling {
			return nil, errors.New("throttling requires redis client")
		}
	}

	store := b.store
	if store == nil {
		store = refresh.NewRedisStore(b.redis, cfg.Refresh.RedisPrefix, cfg.Refresh.RetentionTTL)
	}

	signer, err := jwt.NewManager(jwt.Config{
		Secret:        cloneBytes(cfg.JWT.Secret),
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		AccessTTL:     cfg.JWT.AccessTTL,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	opaque, err := internal.NewGenerator(nil, cfg.Refresh.OpaqueLength)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cfg,
		store:    store,
		signer:   signer,
		opaque:   opaque,
		identity: b.identity,
	}

	if b.redis != nil {
		engine.limiter = rate.New(b.redis, rate.Config{
			EnableRotationThrottle: cfg.Security.EnableRotationThrottle,
			MaxRotationAttempts:    cfg.Security.MaxRotationAttempts,
			RotationCooldown:       cfg.Security.RotationCooldown,
			EnableIPThrottle:       cfg.Security.EnableIPThrottle,
			MaxLoginAttempts:       cfg.Security.MaxLoginAttempts,
			LoginCooldown:          cfg.Security.LoginCooldown,
		})
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
