// Package pgx provides the Postgres storage adapter backed by a pgxpool.
// The username and provider-id unique constraints carry the store's
// atomicity guarantees; unique violations are mapped to the core duplicate
// sentinels so the resolver's create-then-retry contract works unchanged.
package pgx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seclave/seclave/core"
)

// Schema is the reference DDL for the adapter's tables.
const Schema = `
CREATE TABLE IF NOT EXISTS identities (
    id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    username      text UNIQUE,
    password_hash text,
    display_name  text NOT NULL DEFAULT '',
    provider_id   text UNIQUE,
    secret        text,
    created_at    timestamptz NOT NULL DEFAULT now(),
    updated_at    timestamptz NOT NULL DEFAULT now(),
    CONSTRAINT identities_credential_check
        CHECK (password_hash IS NOT NULL OR provider_id IS NOT NULL)
);

CREATE TABLE IF NOT EXISTS sessions (
    id          uuid PRIMARY KEY,
    identity_id uuid NOT NULL REFERENCES identities (id) ON DELETE CASCADE,
    token_hash  text NOT NULL UNIQUE,
    expires_at  timestamptz NOT NULL,
    created_at  timestamptz NOT NULL DEFAULT now()
);
`

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.AuthStorage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// mapUniqueViolation turns a 23505 into the matching duplicate sentinel.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "identities_username_key":
		return core.ErrUserExists
	case "identities_provider_id_key":
		return core.ErrProviderLinked
	}
	return err
}
