package rotor

import (
	"errors"
	"time"
)

// Config defines the engine configuration consumed by [Builder.Build].
//
// Config instances are intended to be configured during initialization and then
// treated as immutable; Build deep-clones the value it receives.
type Config struct {
	JWT      JWTConfig
	Refresh  RefreshConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls access-token signing.
type JWTConfig struct {
	// Secret is the symmetric MAC key. At least 32 bytes.
	Secret []byte
	// SigningMethod is "hs256" (default), "hs384", or "hs512".
	SigningMethod string
	AccessTTL     time.Duration
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls refresh-token generation and persistence.
type RefreshConfig struct {
	// TTL is the validity window of a refresh record.
	TTL time.Duration
	// RedisPrefix namespaces refresh record keys.
	RedisPrefix string
	// RetentionTTL bounds how long consumed or revoked records stay in the
	// store. Zero means no storage-level expiry; an external reaper owns
	// cleanup.
	RetentionTTL time.Duration
	// OpaqueLength is the number of random alphanumeric characters in the
	// opaque token body, before the uuid suffix. Minimum 35.
	OpaqueLength int
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig groups enforcement toggles and throttle budgets.
type SecurityConfig struct {
	// EnforceAccessExpiry rejects rotation while the presented access token is
	// still live, so short access lifetimes keep their meaning.
	EnforceAccessExpiry bool

	EnableRotationThrottle bool
	MaxRotationAttempts    int
	RotationCooldown       time.Duration

	EnableIPThrottle bool
	MaxLoginAttempts int
	LoginCooldown    time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: 1 hour access tokens,
// 6 month refresh tokens, hs256 signing, expiry-gated rotation. The signing
// secret must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			SigningMethod: "hs256",
			AccessTTL:     time.Hour,
		},
		Refresh: RefreshConfig{
			TTL:          182 * 24 * time.Hour,
			RedisPrefix:  "rt",
			OpaqueLength: 35,
		},
		Security: SecurityConfig{
			EnforceAccessExpiry: true,
			MaxRotationAttempts: 10,
			RotationCooldown:    time.Minute,
			MaxLoginAttempts:    10,
			LoginCooldown:       15 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for internally consistent, safe values.
func (c Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret must be at least 32 bytes")
	}
	switch c.JWT.SigningMethod {
	case "hs256", "hs384", "hs512":
	default:
		return errors.New("unsupported signing method")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("access TTL must be positive")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("invalid leeway configuration")
	}
	if c.Refresh.TTL <= 0 {
		return errors.New("refresh TTL must be positive")
	}
	if c.Refresh.TTL <= c.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if c.Refresh.OpaqueLength < 35 {
		return errors.New("opaque token length must be at least 35")
	}
	if c.Refresh.RetentionTTL != 0 && c.Refresh.RetentionTTL < c.Refresh.TTL {
		return errors.New("retention TTL must not undercut refresh TTL")
	}
	if c.Security.EnableRotationThrottle {
		if c.Security.MaxRotationAttempts <= 0 || c.Security.RotationCooldown <= 0 {
			return errors.New("rotation throttle requires positive budget and cooldown")
		}
	}
	if c.Security.MaxLoginAttempts <= 0 || c.Security.LoginCooldown <= 0 {
		return errors.New("login throttle requires positive budget and cooldown")
	}
	return nil
}

func cloneConfig(c Config) Config {
	out := c
	out.JWT.Secret = cloneBytes(c.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
