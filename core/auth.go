package core

import (
	"errors"
	"fmt"
)

// Auth implements the local credential paths and the access gate. The
// delegated path lives in DelegatedAuthenticator; both hand verified
// identities to the same SessionManager.
type Auth struct {
	storage   AuthStorage
	passwords PasswordHandler
	sessions  *SessionManager
}

func NewAuth(storage AuthStorage, passwords PasswordHandler, sessions *SessionManager) *Auth {
	return &Auth{
		storage:   storage,
		passwords: passwords,
		sessions:  sessions,
	}
}

// RegisterInput contains the data needed to register a local account
type RegisterInput struct {
	Username    string `json:"username" form:"username"`
	DisplayName string `json:"displayName" form:"displayName"`
	Password    string `json:"password" form:"password"`
}

// AuthResult contains the authenticated identity and its fresh session
type AuthResult struct {
	Identity *Identity `json:"identity"`
	Session  *Session  `json:"session"`
	Token    string    `json:"token"` // The raw token (not the hash)
}

// Register creates a local account and logs it straight in.
func (a *Auth) Register(input RegisterInput) (*AuthResult, error) {
	if input.Username == "" {
		return nil, ErrUsernameRequired
	}
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}

	// Step 1: Check if the username is already taken
	existing, err := a.storage.GetIdentityByUsername(input.Username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing identity: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	// Step 2: Hash the password
	hashed, err := a.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Create the identity. A racing registration with the same
	// username loses here on the unique constraint.
	username := input.Username
	identity := &Identity{
		Username:     &username,
		PasswordHash: &hashed,
		DisplayName:  input.DisplayName,
	}
	if err := a.storage.CreateIdentity(identity); err != nil {
		return nil, err
	}

	// Step 4: Create a session for the new identity
	return a.login(identity)
}

// LoginInput contains the credentials for local authentication
type LoginInput struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login authenticates a local account. Every failure collapses into
// ErrInvalidCredentials so the response does not reveal whether the
// username exists.
func (a *Auth) Login(input LoginInput) (*AuthResult, error) {
	identity, err := a.storage.GetIdentityByUsername(input.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	// Delegated-only accounts have no password to check
	if identity.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	valid, err := a.passwords.Verify(input.Password, *identity.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	return a.login(identity)
}

// SessionFor issues a session for an identity that was already verified by a
// credential path. Exported for the delegated resolver; guarded by the
// unsaved-identity check in SessionManager.Create.
func (a *Auth) SessionFor(identity *Identity) (*AuthResult, error) {
	return a.login(identity)
}

func (a *Auth) login(identity *Identity) (*AuthResult, error) {
	result, err := a.sessions.Create(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResult{
		Identity: identity,
		Session:  result.Session,
		Token:    result.Token,
	}, nil
}

// Logout revokes the session unconditionally. A missing or already revoked
// token is fine; the caller redirects home either way.
func (a *Auth) Logout(token string) error {
	return a.sessions.Destroy(token)
}

// Resolve is the access gate: it maps a request's token to a live identity
// record, or ErrNotAuthenticated. Stale token contents beyond the identity id
// are never trusted; the record is re-read on every call.
func (a *Auth) Resolve(token string) (*Identity, error) {
	session, err := a.sessions.Verify(token)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	identity, err := a.storage.GetIdentityByID(session.IdentityID)
	if err != nil {
		// Session outlived its identity; treat as unauthenticated.
		return nil, ErrNotAuthenticated
	}

	return identity, nil
}

// SubmitSecret overwrites the identity's secret. The caller must have passed
// the gate already; identityID comes from the resolved identity.
func (a *Auth) SubmitSecret(identityID, secret string) error {
	identity, err := a.storage.GetIdentityByID(identityID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("failed to load identity: %w", err)
	}

	identity.Secret = &secret
	if err := a.storage.UpdateIdentity(identity); err != nil {
		return fmt.Errorf("failed to save secret: %w", err)
	}
	return nil
}

// ListSecrets returns the shared secrets, stripped down to display name and
// secret. Credential fields never leave this package.
func (a *Auth) ListSecrets() ([]SecretEntry, error) {
	identities, err := a.storage.ListIdentitiesWithSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}

	entries := make([]SecretEntry, 0, len(identities))
	for _, identity := range identities {
		if !identity.HasSecret() {
			continue
		}
		entries = append(entries, SecretEntry{
			DisplayName: identity.DisplayName,
			Secret:      *identity.Secret,
		})
	}
	return entries, nil
}
