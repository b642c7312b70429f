package core

import "errors"

// Identity errors
var (
	ErrUserExists         = errors.New("username already taken")          // 409 Conflict
	ErrProviderLinked     = errors.New("provider account already linked") // 409 Conflict
	ErrUserNotFound       = errors.New("identity not found")              // 404 Not Found
	ErrNoCredential       = errors.New("identity has no credential")      // 400
	ErrInvalidCredentials = errors.New("invalid username or password")    // 401 Unauthorized
)

// Session errors
var (
	ErrInvalidToken       = errors.New("invalid session token") // 401
	ErrSessionNotFound    = errors.New("session not found")     // 401
	ErrSessionExpired     = errors.New("session expired")       // 401
	ErrNotAuthenticated   = errors.New("not authenticated")     // 401
	ErrUnverifiedIdentity = errors.New("refusing to bind a session to an unsaved identity")
	ErrCacheNotFound      = errors.New("session not found in cache")
)

// Delegated provider errors
var (
	ErrProviderUnavailable = errors.New("delegated provider unavailable") // degrades to 401
	ErrStateMismatch       = errors.New("authorization state mismatch")
	ErrMissingAuthCode     = errors.New("missing authorization code")
)

// Validation errors (client input)
var (
	ErrUsernameRequired = errors.New("username is required") // 400
	ErrPasswordRequired = errors.New("password is required") // 400
)

// Config errors (server-side configuration)
var (
	ErrStorageRequired  = errors.New("storage adapter is required")      // 500
	ErrProviderRequired = errors.New("provider config is not set")       // 500
)
