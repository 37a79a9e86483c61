package identity

import (
	"context"
	"errors"
	"testing"

	rotor "github.com/rotorauth/rotor"
	"github.com/rotorauth/rotor/password"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()

	hasher, err := password.NewArgon2(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}

	store, err := NewMemoryStore(hasher)
	if err != nil {
		t.Fatalf("NewMemoryStore failed: %v", err)
	}
	return store
}

func TestCreateAndFindPrincipal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.CreatePrincipal(ctx, rotor.CreatePrincipalInput{
		Email:    "Alice@Example.com",
		Username: "alice",
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("CreatePrincipal failed: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated principal id")
	}
	if p.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", p.Email)
	}

	byEmail, err := store.FindByEmail(ctx, "ALICE@example.COM")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if byEmail.ID != p.ID {
		t.Fatalf("expected %q, got %q", p.ID, byEmail.ID)
	}

	byID, err := store.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if byID.Email != p.Email {
		t.Fatalf("expected %q, got %q", p.Email, byID.Email)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	input := rotor.CreatePrincipalInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct-horse-battery",
	}
	if _, err := store.CreatePrincipal(ctx, input); err != nil {
		t.Fatalf("CreatePrincipal failed: %v", err)
	}
	if _, err := store.CreatePrincipal(ctx, input); !errors.Is(err, rotor.ErrPrincipalExists) {
		t.Fatalf("expected ErrPrincipalExists, got %v", err)
	}
}

func TestUnknownLookups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, rotor.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
	if _, err := store.FindByID(ctx, "user-404"); !errors.Is(err, rotor.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p, err := store.CreatePrincipal(ctx, rotor.CreatePrincipalInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("CreatePrincipal failed: %v", err)
	}

	ok, err := store.VerifyPassword(ctx, p, "correct-horse-battery")
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = store.VerifyPassword(ctx, p, "wrong-password")
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail")
	}

	if _, err := store.VerifyPassword(ctx, nil, "anything"); !errors.Is(err, rotor.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound for nil principal, got %v", err)
	}
}

func TestDefaultHasher(t *testing.T) {
	store, err := NewMemoryStore(nil)
	if err != nil {
		t.Fatalf("NewMemoryStore failed: %v", err)
	}
	if _, err := store.CreatePrincipal(context.Background(), rotor.CreatePrincipalInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct-horse-battery",
	}); err != nil {
		t.Fatalf("CreatePrincipal with default hasher failed: %v", err)
	}
}
