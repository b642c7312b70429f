package pgx

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seclave/seclave/core"
)

const identityColumns = `id, username, password_hash, display_name, provider_id, secret, created_at, updated_at`

func (a *Adapter) CreateIdentity(identity *core.Identity) error {
	if !identity.HasCredential() {
		return core.ErrNoCredential
	}

	ctx := context.Background()

	query := `INSERT INTO identities (username, password_hash, display_name, provider_id, secret)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`

	var id string
	var createdAt, updatedAt time.Time
	err := a.pool.QueryRow(ctx, query,
		identity.Username, identity.PasswordHash, identity.DisplayName, identity.ProviderID, identity.Secret,
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}

	identity.ID = id
	identity.CreatedAt = createdAt
	identity.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) GetIdentityByID(id string) (*core.Identity, error) {
	return a.getIdentity(`SELECT `+identityColumns+` FROM identities WHERE id = $1`, id)
}

func (a *Adapter) GetIdentityByUsername(username string) (*core.Identity, error) {
	return a.getIdentity(`SELECT `+identityColumns+` FROM identities WHERE username = $1`, username)
}

func (a *Adapter) GetIdentityByProviderID(providerID string) (*core.Identity, error) {
	return a.getIdentity(`SELECT `+identityColumns+` FROM identities WHERE provider_id = $1`, providerID)
}

func (a *Adapter) getIdentity(query string, arg any) (*core.Identity, error) {
	ctx := context.Background()

	identity := &core.Identity{}
	err := a.pool.QueryRow(ctx, query, arg).Scan(
		&identity.ID, &identity.Username, &identity.PasswordHash, &identity.DisplayName,
		&identity.ProviderID, &identity.Secret, &identity.CreatedAt, &identity.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return identity, nil
}

func (a *Adapter) UpdateIdentity(identity *core.Identity) error {
	ctx := context.Background()

	query := `UPDATE identities
	          SET username = $1, password_hash = $2, display_name = $3, provider_id = $4, secret = $5, updated_at = now()
	          WHERE id = $6
	          RETURNING updated_at`

	var updatedAt time.Time
	err := a.pool.QueryRow(ctx, query,
		identity.Username, identity.PasswordHash, identity.DisplayName, identity.ProviderID, identity.Secret, identity.ID,
	).Scan(&updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return core.ErrUserNotFound
		}
		return mapUniqueViolation(err)
	}
	identity.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) ListIdentitiesWithSecrets() ([]*core.Identity, error) {
	ctx := context.Background()

	query := `SELECT ` + identityColumns + ` FROM identities WHERE secret IS NOT NULL AND secret <> ''`

	rows, err := a.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []*core.Identity
	for rows.Next() {
		identity := &core.Identity{}
		err := rows.Scan(
			&identity.ID, &identity.Username, &identity.PasswordHash, &identity.DisplayName,
			&identity.ProviderID, &identity.Secret, &identity.CreatedAt, &identity.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return identities, nil
}
