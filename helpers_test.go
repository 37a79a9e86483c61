package rotor

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rotorauth/rotor/refresh"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

// testConfig mints access tokens that are already expired, so rotation tests
// run without waiting out a TTL.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("test-secret-test-secret-test-secret!")
	cfg.JWT.AccessTTL = time.Nanosecond
	cfg.Refresh.TTL = time.Hour
	return cfg
}

// liveTokenConfig mints access tokens that stay valid for the duration of a
// test.
func liveTokenConfig() Config {
	cfg := testConfig()
	cfg.JWT.AccessTTL = time.Hour
	cfg.Refresh.TTL = 2 * time.Hour
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, ids IdentityStore) (*Engine, *redis.Client, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityStore(ids).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, rdb, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

type mockIdentity struct {
	mu        sync.RWMutex
	byEmail   map[string]*Principal
	byID      map[string]*Principal
	passwords map[string]string
	nextID    int
}

func newMockIdentity() *mockIdentity {
	return &mockIdentity{
		byEmail:   map[string]*Principal{},
		byID:      map[string]*Principal{},
		passwords: map[string]string{},
		nextID:    1,
	}
}

func (m *mockIdentity) seed(t *testing.T, email, username, password string) *Principal {
	t.Helper()

	p, err := m.CreatePrincipal(context.Background(), CreatePrincipalInput{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		t.Fatalf("seed principal failed: %v", err)
	}
	return p
}

func (m *mockIdentity) FindByEmail(_ context.Context, email string) (*Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byEmail[email]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	out := *p
	return &out, nil
}

func (m *mockIdentity) FindByID(_ context.Context, id string) (*Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	out := *p
	return &out, nil
}

func (m *mockIdentity) VerifyPassword(_ context.Context, p *Principal, plaintext string) (bool, error) {
	if p == nil {
		return false, ErrPrincipalNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.passwords[p.ID]
	if !ok {
		return false, ErrPrincipalNotFound
	}
	return stored == plaintext, nil
}

func (m *mockIdentity) CreatePrincipal(_ context.Context, input CreatePrincipalInput) (*Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[input.Email]; exists {
		return nil, ErrPrincipalExists
	}

	p := &Principal{
		ID:       "u" + strconv.Itoa(m.nextID),
		Email:    input.Email,
		Username: input.Username,
	}
	m.nextID++

	m.byEmail[p.Email] = p
	m.byID[p.ID] = p
	m.passwords[p.ID] = input.Password

	out := *p
	return &out, nil
}

// failingStore simulates a persistence outage on every operation.
type failingStore struct{}

func (failingStore) Create(context.Context, *refresh.Record) error {
	return errors.New("store down")
}

func (failingStore) FindByToken(context.Context, string) (*refresh.Record, error) {
	return nil, refresh.ErrStoreUnavailable
}

func (failingStore) MarkUsed(context.Context, string) error {
	return refresh.ErrStoreUnavailable
}

func (failingStore) Revoke(context.Context, string) error {
	return refresh.ErrStoreUnavailable
}
