package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the HMAC variant used for all tokens.
type SigningMethod string

const (
	// MethodHS256 is the default signing method.
	MethodHS256 SigningMethod = "hs256"
	// MethodHS384 selects HMAC-SHA384.
	MethodHS384 SigningMethod = "hs384"
	// MethodHS512 selects HMAC-SHA512.
	MethodHS512 SigningMethod = "hs512"
)

var (
	// ErrSignatureInvalid is returned when the token signature does not
	// verify under the configured secret.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrAlgorithmMismatch is returned when the token header names any
	// algorithm other than the configured one.
	ErrAlgorithmMismatch = errors.New("token algorithm mismatch")
	// ErrTokenMalformed covers tokens that cannot be decoded at all.
	ErrTokenMalformed = errors.New("token malformed")
)

// Config holds signing parameters. Secret is required and must be at least
// 32 bytes; the Manager constructor enforces both.
type Config struct {
	Secret        []byte
	SigningMethod SigningMethod
	AccessTTL     time.Duration
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Manager signs and validates access tokens. Safe for concurrent use.
type Manager struct {
	config Config
}

// AccessClaims is the claim set carried by every access token. Subject
// duplicates Email; UID carries the principal identifier; ID is the jti that
// binds the token to its refresh record.
type AccessClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a [Manager].
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if len(cfg.Secret) < 32 {
		return nil, errors.New("secret must be at least 32 bytes")
	}
	switch cfg.SigningMethod {
	case MethodHS256, MethodHS384, MethodHS512:
	case "":
		cfg.SigningMethod = MethodHS256
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// SignAccess builds and signs an access token for the given principal. It
// returns the compact serialization and the generated jti.
func (m *Manager) SignAccess(userID, email string) (string, string, error) {
	jti := uuid.NewString()
	now := time.Now()

	claims := AccessClaims{
		UID:   userID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			Issuer:    m.config.Issuer,
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	token := jwt.NewWithClaims(m.method(), claims)

	signed, err := token.SignedString(m.config.Secret)
	if err != nil {
		return "", "", err
	}

	return signed, jti, nil
}

// ParseAccess verifies the signature and algorithm of a compact token and
// returns its claims. Expired tokens parse successfully: expiry is a claim
// the caller evaluates, not a validation failure here.
func (m *Manager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithoutClaimsValidation(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.method().Alg() {
			return nil, fmt.Errorf("%w: got %s", ErrAlgorithmMismatch, t.Method.Alg())
		}
		return m.config.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlgorithmMismatch):
			return nil, ErrAlgorithmMismatch
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// AccessTTL exposes the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.config.AccessTTL
}

// Algorithm returns the JWS algorithm name tokens are signed with.
func (m *Manager) Algorithm() string {
	return m.method().Alg()
}

func (m *Manager) method() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodHS384:
		return jwt.SigningMethodHS384
	case MethodHS512:
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}
