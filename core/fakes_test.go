package core

import (
	"fmt"
	"sync"
	"time"
)

// fakeStorage is an in-memory AuthStorage for core tests. It enforces the
// same unique-key behavior as the real adapters so race-handling paths can
// be exercised.
type fakeStorage struct {
	mu         sync.Mutex
	seq        int
	identities map[string]*Identity
	byUsername map[string]string
	byProvider map[string]string
	sessions   map[string]*Session

	createIdentityErr error
	createSessionErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		identities: make(map[string]*Identity),
		byUsername: make(map[string]string),
		byProvider: make(map[string]string),
		sessions:   make(map[string]*Session),
	}
}

func (f *fakeStorage) CreateIdentity(identity *Identity) error {
	if !identity.HasCredential() {
		return ErrNoCredential
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createIdentityErr != nil {
		return f.createIdentityErr
	}
	if identity.Username != nil {
		if _, taken := f.byUsername[*identity.Username]; taken {
			return ErrUserExists
		}
	}
	if identity.ProviderID != nil {
		if _, taken := f.byProvider[*identity.ProviderID]; taken {
			return ErrProviderLinked
		}
	}

	f.seq++
	identity.ID = fmt.Sprintf("identity-%d", f.seq)
	identity.CreatedAt = time.Now()
	identity.UpdatedAt = identity.CreatedAt

	f.identities[identity.ID] = identity
	if identity.Username != nil {
		f.byUsername[*identity.Username] = identity.ID
	}
	if identity.ProviderID != nil {
		f.byProvider[*identity.ProviderID] = identity.ID
	}
	return nil
}

func (f *fakeStorage) GetIdentityByID(id string) (*Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.identities[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return identity, nil
}

func (f *fakeStorage) GetIdentityByUsername(username string) (*Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return f.identities[id], nil
}

func (f *fakeStorage) GetIdentityByProviderID(providerID string) (*Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byProvider[providerID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return f.identities[id], nil
}

func (f *fakeStorage) UpdateIdentity(identity *Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.identities[identity.ID]; !ok {
		return ErrUserNotFound
	}
	identity.UpdatedAt = time.Now()
	f.identities[identity.ID] = identity
	return nil
}

func (f *fakeStorage) ListIdentitiesWithSecrets() ([]*Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Identity
	for _, identity := range f.identities {
		if identity.HasSecret() {
			out = append(out, identity)
		}
	}
	return out, nil
}

func (f *fakeStorage) CreateSession(session *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createSessionErr != nil {
		return f.createSessionErr
	}
	f.sessions[session.TokenHash] = session
	return nil
}

func (f *fakeStorage) GetSessionByHash(tokenHash string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[tokenHash]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeStorage) DeleteSessionByHash(tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, tokenHash)
	return nil
}

func (f *fakeStorage) DeleteIdentitySessions(identityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for hash, session := range f.sessions {
		if session.IdentityID == identityID {
			delete(f.sessions, hash)
		}
	}
	return nil
}

func (f *fakeStorage) DeleteExpiredSessions() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	count := 0
	for hash, session := range f.sessions {
		if now.After(session.ExpiresAt) {
			delete(f.sessions, hash)
			count++
		}
	}
	return count, nil
}

func (f *fakeStorage) deleteIdentity(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.identities[id]
	if !ok {
		return
	}
	if identity.Username != nil {
		delete(f.byUsername, *identity.Username)
	}
	if identity.ProviderID != nil {
		delete(f.byProvider, *identity.ProviderID)
	}
	delete(f.identities, id)
}

func strptr(v string) *string {
	return &v
}
