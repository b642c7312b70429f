// Package memory provides the in-memory storage adapter. It is the pluggable
// default backend for development and tests; the pgx adapter replaces it in
// production. Unique-key invariants are enforced under the store's own lock,
// so a racing create is observed as a duplicate error, never a second record.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seclave/seclave/core"
)

type Store struct {
	mu         sync.RWMutex
	identities map[string]*core.Identity // key: identity id
	byUsername map[string]string         // unique index: username -> id
	byProvider map[string]string         // unique index: provider id -> id
	sessions   map[string]*core.Session  // key: token hash
}

var _ core.AuthStorage = (*Store)(nil)

func New() *Store {
	return &Store{
		identities: make(map[string]*core.Identity),
		byUsername: make(map[string]string),
		byProvider: make(map[string]string),
		sessions:   make(map[string]*core.Session),
	}
}

func (s *Store) CreateIdentity(identity *core.Identity) error {
	if !identity.HasCredential() {
		return core.ErrNoCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if identity.Username != nil {
		if _, taken := s.byUsername[*identity.Username]; taken {
			return core.ErrUserExists
		}
	}
	if identity.ProviderID != nil {
		if _, taken := s.byProvider[*identity.ProviderID]; taken {
			return core.ErrProviderLinked
		}
	}

	now := time.Now()
	identity.ID = uuid.NewString()
	identity.CreatedAt = now
	identity.UpdatedAt = now

	s.identities[identity.ID] = cloneIdentity(identity)
	if identity.Username != nil {
		s.byUsername[*identity.Username] = identity.ID
	}
	if identity.ProviderID != nil {
		s.byProvider[*identity.ProviderID] = identity.ID
	}
	return nil
}

func (s *Store) GetIdentityByID(id string) (*core.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return cloneIdentity(identity), nil
}

func (s *Store) GetIdentityByUsername(username string) (*core.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return cloneIdentity(s.identities[id]), nil
}

func (s *Store) GetIdentityByProviderID(providerID string) (*core.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byProvider[providerID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return cloneIdentity(s.identities[id]), nil
}

func (s *Store) UpdateIdentity(identity *core.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.identities[identity.ID]
	if !ok {
		return core.ErrUserNotFound
	}

	if identity.Username != nil {
		if id, taken := s.byUsername[*identity.Username]; taken && id != identity.ID {
			return core.ErrUserExists
		}
	}
	if identity.ProviderID != nil {
		if id, taken := s.byProvider[*identity.ProviderID]; taken && id != identity.ID {
			return core.ErrProviderLinked
		}
	}

	// Re-point the unique indexes in case a credential was added.
	if current.Username != nil {
		delete(s.byUsername, *current.Username)
	}
	if current.ProviderID != nil {
		delete(s.byProvider, *current.ProviderID)
	}

	identity.UpdatedAt = time.Now()
	s.identities[identity.ID] = cloneIdentity(identity)
	if identity.Username != nil {
		s.byUsername[*identity.Username] = identity.ID
	}
	if identity.ProviderID != nil {
		s.byProvider[*identity.ProviderID] = identity.ID
	}
	return nil
}

func (s *Store) ListIdentitiesWithSecrets() ([]*core.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Identity
	for _, identity := range s.identities {
		if identity.HasSecret() {
			out = append(out, cloneIdentity(identity))
		}
	}
	return out, nil
}

func (s *Store) CreateSession(session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.TokenHash] = cloneSession(session)
	return nil
}

func (s *Store) GetSessionByHash(tokenHash string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *Store) DeleteSessionByHash(tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}

func (s *Store) DeleteIdentitySessions(identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, session := range s.sessions {
		if session.IdentityID == identityID {
			delete(s.sessions, hash)
		}
	}
	return nil
}

func (s *Store) DeleteExpiredSessions() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	count := 0
	for hash, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, hash)
			count++
		}
	}
	return count, nil
}

// Clones keep callers from mutating stored records behind the lock.

func cloneIdentity(identity *core.Identity) *core.Identity {
	out := *identity
	out.Username = cloneString(identity.Username)
	out.PasswordHash = cloneString(identity.PasswordHash)
	out.ProviderID = cloneString(identity.ProviderID)
	out.Secret = cloneString(identity.Secret)
	return &out
}

func cloneSession(session *core.Session) *core.Session {
	out := *session
	return &out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
