package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seclave/seclave/pkg/crypto"
)

type SessionConfig struct {
	MaxAge time.Duration
}

// SessionManager serializes an authenticated identity into an opaque token on
// login and reconstructs the identity reference on every later request.
type SessionManager struct {
	config  SessionConfig
	storage SessionStorage
	cache   Cache
}

type CreateSessionResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 24 * time.Hour,
	}
}

func NewSessionManager(config SessionConfig, storage SessionStorage, cache Cache) *SessionManager {
	return &SessionManager{
		config:  config,
		storage: storage,
		cache:   cache,
	}
}

// Create mints a session bound to the given identity. Only identities that
// came back from storage after password verification or delegated resolution
// are acceptable; an unsaved placeholder has no id and is refused, so an
// unauthenticated request can never talk its way into a session.
func (sm *SessionManager) Create(identity *Identity) (*CreateSessionResult, error) {
	if identity == nil || identity.ID == "" {
		return nil, ErrUnverifiedIdentity
	}

	token, err := crypto.GenerateHashedToken(crypto.DefaultTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	session := &Session{
		ID:         uuid.NewString(),
		IdentityID: identity.ID,
		TokenHash:  token.Hash,
		ExpiresAt:  now.Add(sm.config.MaxAge),
		CreatedAt:  now,
	}

	if err := sm.storage.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &CreateSessionResult{
		Session: session,
		Token:   token.Token,
	}, nil
}

// Verify resolves a raw token to its session. Missing, unknown and expired
// tokens all come back as typed errors, never as a panic.
func (sm *SessionManager) Verify(token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	tokenHash := crypto.HashToken(token)

	if sm.cache != nil {
		if session, err := sm.cache.Get(tokenHash); err == nil && session != nil {
			if time.Now().Before(session.ExpiresAt) {
				return session, nil
			}
			sm.cache.Delete(tokenHash)
		}
	}

	session, err := sm.storage.GetSessionByHash(tokenHash)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	valid, err := crypto.VerifyToken(token, session.TokenHash)
	if err != nil || !valid {
		return nil, ErrInvalidToken
	}

	if time.Now().After(session.ExpiresAt) {
		sm.storage.DeleteSessionByHash(tokenHash)
		return nil, ErrSessionExpired
	}

	if sm.cache != nil {
		sm.cache.Set(tokenHash, session)
	}

	return session, nil
}

// Destroy invalidates a token. Idempotent: destroying an unknown or already
// revoked token is not an error.
func (sm *SessionManager) Destroy(token string) error {
	if token == "" {
		return nil
	}

	tokenHash := crypto.HashToken(token)

	if sm.cache != nil {
		sm.cache.Delete(tokenHash)
	}

	return sm.storage.DeleteSessionByHash(tokenHash)
}

// DestroyAllForIdentity revokes every session bound to one identity.
func (sm *SessionManager) DestroyAllForIdentity(identityID string) error {
	if sm.cache != nil {
		sm.cache.Clear()
	}

	return sm.storage.DeleteIdentitySessions(identityID)
}
