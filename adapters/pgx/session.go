package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/seclave/seclave/core"
)

func (a *Adapter) CreateSession(session *core.Session) error {
	ctx := context.Background()

	query := `INSERT INTO sessions (id, identity_id, token_hash, expires_at, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := a.pool.Exec(ctx, query,
		session.ID, session.IdentityID, session.TokenHash, session.ExpiresAt, session.CreatedAt,
	)
	return err
}

func (a *Adapter) GetSessionByHash(tokenHash string) (*core.Session, error) {
	ctx := context.Background()

	query := `SELECT id, identity_id, token_hash, expires_at, created_at FROM sessions WHERE token_hash = $1`

	session := &core.Session{}
	err := a.pool.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID, &session.IdentityID, &session.TokenHash, &session.ExpiresAt, &session.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (a *Adapter) DeleteSessionByHash(tokenHash string) error {
	ctx := context.Background()
	_, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

func (a *Adapter) DeleteIdentitySessions(identityID string) error {
	ctx := context.Background()
	_, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE identity_id = $1`, identityID)
	return err
}

func (a *Adapter) DeleteExpiredSessions() (int, error) {
	ctx := context.Background()
	tag, err := a.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
