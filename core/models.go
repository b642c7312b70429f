package core

import "time"

// Identity is a durable account record usable for authentication
//
// A record is created either by local registration (username + password hash)
// or by the first delegated sign-in (provider id + display name). One record
// may carry both credential kinds; it must never carry neither.
type Identity struct {
	ID           string    `json:"id"`
	Username     *string   `json:"username,omitempty"`
	PasswordHash *string   `json:"-"` // Never expose in JSON
	DisplayName  string    `json:"displayName"`
	ProviderID   *string   `json:"-"` // Account id at the delegated provider
	Secret       *string   `json:"secret,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasCredential reports whether the record can authenticate at all.
func (i *Identity) HasCredential() bool {
	return i.PasswordHash != nil || i.ProviderID != nil
}

// HasSecret reports whether the identity has shared a non-empty secret.
func (i *Identity) HasSecret() bool {
	return i.Secret != nil && *i.Secret != ""
}

// Session represents an active login session
//
// The token carries no authority beyond the identity id it references;
// authorization is re-derived from the current identity record per request.
type Session struct {
	ID         string    `json:"id"`
	IdentityID string    `json:"identityId"`
	TokenHash  string    `json:"-"` // Never expose in JSON (security!)
	ExpiresAt  time.Time `json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SessionData combines identity and session info
// The model returned to clients
type SessionData struct {
	Identity *Identity `json:"identity"`
	Session  *Session  `json:"session"`
}

// SecretEntry is the listing view of an identity that shared a secret.
// Credential fields are projected out entirely, not just tag-hidden.
type SecretEntry struct {
	DisplayName string `json:"displayName"`
	Secret      string `json:"secret"`
}
