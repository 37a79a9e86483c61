// Package password provides argon2id hashing in PHC string format for
// identity store implementations.
package password
