package core

import "time"

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// IdentityStorage defines identity-related database operations.
//
// CreateIdentity must be atomic with respect to the unique-key invariants:
// at most one record per username, at most one per provider id. A racing
// create surfaces as ErrUserExists or ErrProviderLinked, never as a second
// row. A record with neither credential is rejected with ErrNoCredential.
type IdentityStorage interface {
	CreateIdentity(identity *Identity) error

	// Query methods
	GetIdentityByID(id string) (*Identity, error)
	GetIdentityByUsername(username string) (*Identity, error)
	GetIdentityByProviderID(providerID string) (*Identity, error)

	// Update
	UpdateIdentity(identity *Identity) error

	// ListIdentitiesWithSecrets returns every identity whose secret field is
	// non-empty, for the secrets listing.
	ListIdentitiesWithSecrets() ([]*Identity, error)
}

// SessionStorage defines session-related database operations
type SessionStorage interface {
	CreateSession(session *Session) error
	GetSessionByHash(tokenHash string) (*Session, error)
	DeleteSessionByHash(tokenHash string) error
	DeleteIdentitySessions(identityID string) error
	DeleteExpiredSessions() (int, error)
}

type AuthStorage interface {
	IdentityStorage
	SessionStorage
}

// ============================================
// CACHE PORT
// ============================================

// Cache defines session caching operations
type Cache interface {
	Get(tokenHash string) (*Session, error)
	Set(tokenHash string, session *Session) error
	Delete(tokenHash string) error
	Clear() error
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// ============================================
// PASSWORD PORT
// ============================================

// PasswordHandler hashes and verifies local passwords.
type PasswordHandler interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}
