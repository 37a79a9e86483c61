package identity

import (
	"context"
	"strconv"
	"strings"
	"sync"

	rotor "github.com/rotorauth/rotor"
	"github.com/rotorauth/rotor/password"
)

type memoryRecord struct {
	principal    rotor.Principal
	passwordHash string
}

// MemoryStore is a map-backed [rotor.IdentityStore]. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]*memoryRecord
	byID    map[string]*memoryRecord
	hasher  *password.Argon2
	nextID  int
}

// NewMemoryStore creates an empty store. A nil hasher selects
// [password.DefaultConfig] parameters.
func NewMemoryStore(hasher *password.Argon2) (*MemoryStore, error) {
	if hasher == nil {
		h, err := password.NewArgon2(password.DefaultConfig())
		if err != nil {
			return nil, err
		}
		hasher = h
	}

	return &MemoryStore{
		byEmail: make(map[string]*memoryRecord),
		byID:    make(map[string]*memoryRecord),
		hasher:  hasher,
		nextID:  1,
	}, nil
}

// FindByEmail looks up a principal by normalized email.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*rotor.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, rotor.ErrPrincipalNotFound
	}

	p := rec.principal
	return &p, nil
}

// FindByID looks up a principal by identifier.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*rotor.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, rotor.ErrPrincipalNotFound
	}

	p := rec.principal
	return &p, nil
}

// VerifyPassword checks the plaintext against the stored argon2id hash.
func (s *MemoryStore) VerifyPassword(_ context.Context, p *rotor.Principal, plaintext string) (bool, error) {
	if p == nil {
		return false, rotor.ErrPrincipalNotFound
	}

	s.mu.RLock()
	rec, ok := s.byID[p.ID]
	s.mu.RUnlock()
	if !ok {
		return false, rotor.ErrPrincipalNotFound
	}

	return s.hasher.Verify(plaintext, rec.passwordHash)
}

// CreatePrincipal hashes the password and stores a new principal. Duplicate
// emails fail with [rotor.ErrPrincipalExists].
func (s *MemoryStore) CreatePrincipal(_ context.Context, input rotor.CreatePrincipalInput) (*rotor.Principal, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, rotor.ErrPrincipalExists
	}

	rec := &memoryRecord{
		principal: rotor.Principal{
			ID:       "user-" + strconv.Itoa(s.nextID),
			Email:    email,
			Username: input.Username,
		},
		passwordHash: hash,
	}
	s.nextID++

	s.byEmail[email] = rec
	s.byID[rec.principal.ID] = rec

	p := rec.principal
	return &p, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
