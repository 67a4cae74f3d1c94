// Package repository implements the relational persistence layer over
// database/sql.  It defines sentinel error values that allow the service
// layer to distinguish failure scenarios without inspecting driver
// errors.
package repository

import "errors"

// ErrDuplicate is returned when an insert violates a unique constraint,
// such as registering an email or mobile that already exists.  The
// service layer translates it into a conflict.
var ErrDuplicate = errors.New("duplicate record")

// ErrNoRole is returned when a user has no row in user_roles.  Every
// user must have exactly one resolvable role before tokens can be
// minted, so this indicates an internal inconsistency rather than a
// client mistake.
var ErrNoRole = errors.New("no role assigned")

// ErrSessionNotFound is returned when no session row matches the
// presented refresh token.
var ErrSessionNotFound = errors.New("session not found")
