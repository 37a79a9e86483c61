// Package postgres provides a PostgreSQL-backed refresh token store.
//
// Expected schema:
//
//	CREATE TABLE refresh_tokens (
//	    token      TEXT PRIMARY KEY,
//	    jwt_id     TEXT NOT NULL,
//	    user_id    TEXT NOT NULL,
//	    issued_at  TIMESTAMPTZ NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL,
//	    used       BOOLEAN NOT NULL DEFAULT FALSE,
//	    revoked    BOOLEAN NOT NULL DEFAULT FALSE
//	);
//
// The used flip is a single conditional UPDATE guarded by the primary key, so
// concurrent rotations of the same token serialize on the row and exactly one
// caller wins.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rotorauth/rotor/refresh"
)

const uniqueViolationCode = "23505"

// Store implements [refresh.Store] on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an existing pool. The caller owns the pool lifecycle.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create inserts a new record; a primary-key collision maps to
// [refresh.ErrDuplicateToken].
func (s *Store) Create(ctx context.Context, rec *refresh.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (token, jwt_id, user_id, issued_at, expires_at, used, revoked)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.Token, rec.JWTID, rec.UserID, rec.IssuedAt, rec.ExpiresAt, rec.Used, rec.Revoked,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return refresh.ErrDuplicateToken
		}
		return fmt.Errorf("%w: %v", refresh.ErrStoreUnavailable, err)
	}

	return nil
}

// FindByToken loads the record stored under token.
func (s *Store) FindByToken(ctx context.Context, token string) (*refresh.Record, error) {
	rec := &refresh.Record{Token: token}

	err := s.pool.QueryRow(ctx,
		`SELECT jwt_id, user_id, issued_at, expires_at, used, revoked
		 FROM refresh_tokens WHERE token = $1`,
		token,
	).Scan(&rec.JWTID, &rec.UserID, &rec.IssuedAt, &rec.ExpiresAt, &rec.Used, &rec.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, refresh.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", refresh.ErrStoreUnavailable, err)
	}

	return rec, nil
}

// MarkUsed transitions used from false to true in one conditional UPDATE.
// A zero row count is classified with a follow-up read: the CAS itself has
// already settled by then.
func (s *Store) MarkUsed(ctx context.Context, token string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE refresh_tokens SET used = TRUE WHERE token = $1 AND used = FALSE`,
		token,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", refresh.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var used bool
	err = s.pool.QueryRow(ctx,
		`SELECT used FROM refresh_tokens WHERE token = $1`, token,
	).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return refresh.ErrNotFound
		}
		return fmt.Errorf("%w: %v", refresh.ErrStoreUnavailable, err)
	}
	if used {
		return refresh.ErrAlreadyUsed
	}

	return fmt.Errorf("%w: mark-used update affected no rows", refresh.ErrStoreUnavailable)
}

// Revoke sets the revoked flag; monotone, so repeated revocations succeed.
func (s *Store) Revoke(ctx context.Context, token string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", refresh.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return refresh.ErrNotFound
	}

	return nil
}
