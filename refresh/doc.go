// Package refresh owns refresh-token persistence for the rotor engine.
//
// A [Record] is keyed by its opaque token string and carries the jti of the
// access token it was issued alongside, the owning principal, its validity
// window, and two monotone flags: used (set exactly once, by rotation) and
// revoked (set by an administrative path). Records are never deleted by the
// engine; consumed and revoked records stay behind so replay attempts remain
// visible.
//
// [RedisStore] is the primary implementation. MarkUsed is a single Lua script
// that compare-and-sets the used flag in place, which is what makes two
// concurrent rotations of the same token resolve to exactly one winner. The
// postgres subpackage provides an equivalent store on PostgreSQL.
package refresh
