package rotor

import "errors"

var (
	// ErrValidation is returned when a request carries malformed or missing
	// fields. Field-level messages are surfaced on [AuthResult.Errors].
	ErrValidation = errors.New("request validation failed")
	// ErrInvalidCredentials covers unknown email and wrong password without
	// distinguishing the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPrincipalExists is returned when registration collides with an
	// existing identity.
	ErrPrincipalExists = errors.New("principal already exists")
	// ErrPrincipalNotFound is returned by [IdentityStore] implementations for
	// unknown identities. The engine maps it to ErrInvalidCredentials on login
	// paths to avoid enumeration.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrLoginRateLimited is returned when the login attempt budget is spent.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrInvalidToken covers malformed access tokens, signature failures, and
	// algorithm substitution without distinguishing which check failed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrAccessTokenExpired is returned by ValidateAccess for a structurally
	// valid but expired access token.
	ErrAccessTokenExpired = errors.New("access token expired")
	// ErrTokenNotYetExpired rejects rotation attempted while the presented
	// access token is still live.
	ErrTokenNotYetExpired = errors.New("access token not yet expired")
	// ErrUnknownRefreshToken is returned when the presented refresh token has
	// no record in the store.
	ErrUnknownRefreshToken = errors.New("unknown refresh token")
	// ErrRefreshReuse is returned when a refresh token is presented after it
	// has already been consumed.
	ErrRefreshReuse = errors.New("refresh token reuse detected")
	// ErrRefreshRevoked is returned when the refresh record was revoked
	// administratively.
	ErrRefreshRevoked = errors.New("refresh token revoked")
	// ErrRefreshExpired is returned when the refresh record is past its
	// expiry. The boundary is inclusive: expiresAt == now counts as expired.
	ErrRefreshExpired = errors.New("refresh token expired")
	// ErrTokenPairMismatch is returned when the refresh record is not bound to
	// the jti carried by the presented access token.
	ErrTokenPairMismatch = errors.New("token pair mismatch")
	// ErrRotationRateLimited is returned when the rotation throttle denies the
	// attempt.
	ErrRotationRateLimited = errors.New("rotation rate limited")
	// ErrRotationFailed covers unexpected internal failures during rotation
	// that must not leak detail to the caller.
	ErrRotationFailed = errors.New("rotation failed")
	// ErrIssuanceFailed is returned when the refresh record could not be
	// persisted; no token pair is released in that case.
	ErrIssuanceFailed = errors.New("token issuance failed")
	// ErrStoreUnavailable is returned when the refresh token store cannot be
	// reached.
	ErrStoreUnavailable = errors.New("refresh token store unavailable")
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
