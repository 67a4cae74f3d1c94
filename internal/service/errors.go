package service

import "errors"

// Error taxonomy exposed to the transport layer.  Component-level
// failures (a hash mismatch, a store miss, a driver error) are translated
// into exactly one of these at this boundary; nothing below it reaches
// the handlers directly.
var (
	// ErrUserNotFound: no user matches the supplied identifier (404).
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials: the password does not match (401).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict: the identifier is already registered (409).
	ErrConflict = errors.New("account already exists")

	// ErrRoleMissing: the user has no resolvable role.  This is an
	// internal inconsistency, not a client error (500, logged).
	ErrRoleMissing = errors.New("role missing for user")

	// ErrSessionNotFound: the presented refresh token has no live
	// session row (401).
	ErrSessionNotFound = errors.New("session not found")
)
