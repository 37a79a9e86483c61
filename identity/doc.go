// Package identity ships a reference in-memory implementation of
// rotor.IdentityStore, backed by argon2id password hashes. It exists for
// tests, examples, and load generation; production deployments implement
// the interface against their own user database.
package identity
