// Package seclave wires password and delegated-provider authentication
// around a per-user stored secret. The core lives in core/; storage and HTTP
// bindings live in adapters/; this package is the configuration surface.
package seclave

import (
	"github.com/seclave/seclave/core"
)

// interfaces
type (
	AuthStorage     = core.AuthStorage
	IdentityStorage = core.IdentityStorage
	SessionStorage  = core.SessionStorage
	Cache           = core.Cache
	PasswordHandler = core.PasswordHandler
)

// structs
type (
	Config         = core.SessionConfig
	ProviderConfig = core.ProviderConfig
	CacheConfig    = core.CacheConfig
)

type (
	Identity    = core.Identity
	Session     = core.Session
	SessionData = core.SessionData
	SecretEntry = core.SecretEntry
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache     = core.NewInMemoryCache
	NewArgon2            = core.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig
)

var (
	ErrUserExists         = core.ErrUserExists
	ErrProviderLinked     = core.ErrProviderLinked
	ErrUserNotFound       = core.ErrUserNotFound
	ErrNoCredential       = core.ErrNoCredential
	ErrInvalidCredentials = core.ErrInvalidCredentials
)

var (
	ErrInvalidToken       = core.ErrInvalidToken
	ErrSessionNotFound    = core.ErrSessionNotFound
	ErrSessionExpired     = core.ErrSessionExpired
	ErrNotAuthenticated   = core.ErrNotAuthenticated
	ErrUnverifiedIdentity = core.ErrUnverifiedIdentity
)

var (
	ErrProviderUnavailable = core.ErrProviderUnavailable
	ErrStateMismatch       = core.ErrStateMismatch
	ErrMissingAuthCode     = core.ErrMissingAuthCode
)

var (
	ErrStorageRequired  = core.ErrStorageRequired
	ErrProviderRequired = core.ErrProviderRequired
)

// Options assembles the subsystem. Storage is the only hard requirement;
// everything else gets teacher defaults: argon2id hashing, an in-memory
// session cache and 24h sessions.
type Options struct {
	Storage AuthStorage

	// Optional config
	Provider       *ProviderConfig
	SessionConfig  *Config
	PasswordHasher PasswordHandler
	CacheAdapter   Cache
	DisableCache   bool
}

// Seclave bundles the assembled services.
type Seclave struct {
	Auth      *core.Auth
	Sessions  *core.SessionManager
	Delegated *core.DelegatedAuthenticator
}

func New(opts Options) (*Seclave, error) {
	if opts.Storage == nil {
		return nil, ErrStorageRequired
	}

	// Set defaults

	cacheAdapter := opts.CacheAdapter
	if cacheAdapter == nil && !opts.DisableCache {
		cacheAdapter = NewInMemoryCache(CacheConfig{})
	}

	sessionConfig := opts.SessionConfig
	if sessionConfig == nil {
		defaults := DefaultSessionConfig()
		sessionConfig = &defaults
	}

	passwordHasher := opts.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = NewArgon2()
	}

	sessions := core.NewSessionManager(*sessionConfig, opts.Storage, cacheAdapter)

	s := &Seclave{
		Auth:     core.NewAuth(opts.Storage, passwordHasher, sessions),
		Sessions: sessions,
	}

	if opts.Provider != nil {
		s.Delegated = core.NewDelegatedAuthenticator(opts.Storage, *opts.Provider)
	}

	return s, nil
}
