// Package jwt wraps symmetric access-token signing and validation for the
// rotor engine.
//
// The [Manager] signs compact JWS access tokens with a fixed HMAC method and
// validates presented tokens against that method only, so an attacker cannot
// substitute a weaker algorithm. Validation deliberately skips time-based
// claim checks: rotation presents access tokens that are expected to be
// expired, and the caller owns the expiry decision.
package jwt
