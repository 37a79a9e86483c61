// Package middleware provides net/http middleware that guards routes with
// rotor access-token validation.
package middleware
