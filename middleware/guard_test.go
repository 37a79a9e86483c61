package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	rotor "github.com/rotorauth/rotor"
	"github.com/rotorauth/rotor/identity"
)

func newGuardedServer(t *testing.T) (*rotor.Engine, *rotor.Principal, http.Handler, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ids, err := identity.NewMemoryStore(nil)
	if err != nil {
		mr.Close()
		t.Fatalf("NewMemoryStore failed: %v", err)
	}
	p, err := ids.CreatePrincipal(context.Background(), rotor.CreatePrincipalInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct-horse-battery",
	})
	if err != nil {
		mr.Close()
		t.Fatalf("CreatePrincipal failed: %v", err)
	}

	cfg := rotor.DefaultConfig()
	cfg.JWT.Secret = []byte("test-secret-test-secret-test-secret!")
	cfg.JWT.AccessTTL = time.Hour

	engine, err := rotor.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityStore(ids).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Error("expected claims in guarded handler context")
			return
		}
		w.Header().Set("X-UID", claims.UID)
		w.WriteHeader(http.StatusOK)
	}))

	return engine, p, handler, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func TestGuardPassesValidToken(t *testing.T) {
	engine, p, handler, done := newGuardedServer(t)
	defer done()

	res, err := engine.Issue(context.Background(), p)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+res.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-UID"); got != p.ID {
		t.Fatalf("expected uid %q, got %q", p.ID, got)
	}
}

func TestGuardRejectsMissingAndMalformedHeaders(t *testing.T) {
	_, _, handler, done := newGuardedServer(t)
	defer done()

	cases := []string{
		"",
		"Bearer ",
		"Basic dXNlcjpwYXNz",
		"Bearer not.a.jwt",
	}

	for _, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestGuardRejectsExpiredToken(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ids, err := identity.NewMemoryStore(nil)
	if err != nil {
		t.Fatalf("NewMemoryStore failed: %v", err)
	}
	p, err := ids.CreatePrincipal(context.Background(), rotor.CreatePrincipalInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("CreatePrincipal failed: %v", err)
	}

	cfg := rotor.DefaultConfig()
	cfg.JWT.Secret = []byte("test-secret-test-secret-test-secret!")
	cfg.JWT.AccessTTL = time.Nanosecond
	cfg.Refresh.TTL = time.Hour

	engine, err := rotor.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityStore(ids).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	res, err := engine.Issue(context.Background(), p)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+res.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}
