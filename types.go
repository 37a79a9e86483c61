package rotor

import "context"

// Principal is the authenticated identity a token pair is issued to. The
// engine reads only the identifier and email; everything else about the user
// stays behind [IdentityStore].
type Principal struct {
	ID       string
	Email    string
	Username string
}

// CreatePrincipalInput is the input for [IdentityStore.CreatePrincipal].
// Password is plaintext; hashing is the identity store's responsibility.
type CreatePrincipalInput struct {
	Email    string
	Username string
	Password string
}

// IdentityStore is the interface callers must implement to integrate rotor
// with their user database. The engine never sees password material beyond
// passing it through to VerifyPassword and CreatePrincipal.
//
// FindByEmail and FindByID return [ErrPrincipalNotFound] for unknown
// identities; CreatePrincipal returns [ErrPrincipalExists] on duplicates.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	FindByID(ctx context.Context, id string) (*Principal, error)
	VerifyPassword(ctx context.Context, p *Principal, password string) (bool, error)
	CreatePrincipal(ctx context.Context, input CreatePrincipalInput) (*Principal, error)
}

// AuthResult is the outcome of Issue, Login, Register, and Rotate. It is the
// shape transports encode as the JSON response body: on success both tokens
// are set; on failure Success is false and Errors carries human-readable
// reasons, never a partially-issued pair.
type AuthResult struct {
	AccessToken  string   `json:"accessToken,omitempty"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	Success      bool     `json:"success"`
	Errors       []string `json:"errors,omitempty"`
}

func failureResult(reasons ...string) *AuthResult {
	return &AuthResult{Success: false, Errors: reasons}
}
