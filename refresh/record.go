package refresh

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicateToken is returned by Create when the opaque token string is
	// already present in the store.
	ErrDuplicateToken = errors.New("duplicate refresh token")
	// ErrNotFound is returned when no record exists for the given token.
	ErrNotFound = errors.New("refresh token not found")
	// ErrAlreadyUsed is returned by MarkUsed when the used flag was set by an
	// earlier call.
	ErrAlreadyUsed = errors.New("refresh token already used")
	// ErrStoreUnavailable wraps backend connectivity failures.
	ErrStoreUnavailable = errors.New("refresh store unavailable")
)

// Record is the persisted state of a single refresh token.
type Record struct {
	// Token is the opaque random string and the storage key.
	Token string
	// JWTID is the jti of the access token issued alongside this record.
	JWTID string
	// UserID is the owning principal identifier.
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Used flips to true exactly once, when the token is consumed by
	// rotation. It never reverts.
	Used bool
	// Revoked is set by an administrative path and never reverts.
	Revoked bool
}

// ExpiredAt reports whether the record is past its validity window at the
// given instant. The boundary is inclusive: a record whose ExpiresAt equals
// now is already expired.
func (r *Record) ExpiredAt(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store is the persistence contract the engine rotates against.
//
// MarkUsed must be atomic with respect to concurrent callers: of two
// simultaneous calls for the same token, exactly one returns nil and the
// other [ErrAlreadyUsed]. A read-then-write implementation is not a valid
// Store.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	FindByToken(ctx context.Context, token string) (*Record, error)
	MarkUsed(ctx context.Context, token string) error
	Revoke(ctx context.Context, token string) error
}
