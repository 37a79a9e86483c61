// Package rotor is a token lifecycle engine: it issues short-lived signed
// access tokens paired with long-lived opaque refresh tokens, and exchanges a
// still-registered refresh token for a new pair through a strict
// verify-and-rotate protocol.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// rotor is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (AuthResult, Principal, MetricsSnapshot). Token signing lives in
// the jwt subpackage, refresh-token persistence in the refresh subpackage, and
// coordination helpers (opaque token generation, rate limiting) under
// internal/.
//
// # What this package must NOT do
//
//   - Store credentials or verify passwords. Identity lives behind the
//     [IdentityStore] interface supplied by the caller.
//   - Persist access tokens. Access-token validity is re-derived from the
//     signature and expiry claim alone.
//   - Delete refresh records. Consumed and revoked records are retained so
//     replay attempts remain detectable; reaping is an external concern.
//
// # Rotation contract
//
// A refresh token is exchangeable exactly once, only together with the access
// token it was issued alongside, only after that access token has expired, and
// only while it is neither revoked nor past its own expiry. Two concurrent
// rotations of the same refresh token produce exactly one success; the loser
// observes [ErrRefreshReuse].
package rotor
