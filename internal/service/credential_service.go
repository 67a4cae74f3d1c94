// Package service orchestrates the credential lifecycle: login, register,
// refresh and logout.  It owns the error taxonomy the transport layer
// consumes and keeps the strict login ordering (lookup, then password
// verification, then role resolution, then token issuance, then session
// persistence).  A token pair never escapes unless its session row was
// written.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/bazario/auth-service/internal/auth"
	"github.com/bazario/auth-service/internal/model"
	"github.com/bazario/auth-service/internal/queue"
	"github.com/bazario/auth-service/internal/repository"
)

// UserStore is the identity lookup capability the service needs.
// Lookups report sql.ErrNoRows for absent users, as the repository does.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByMobile(ctx context.Context, mobile string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RoleStore resolves and assigns the single role held by a user.
type RoleStore interface {
	ResolveForUser(ctx context.Context, userID uint64) (string, error)
	Assign(ctx context.Context, userID uint64, role string) error
}

// SessionStore persists one row per issued refresh token.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, refreshToken, deviceInfo string) error
	FindByToken(ctx context.Context, refreshToken string) (uint64, error)
	DeleteByUserAndToken(ctx context.Context, userID uint64, refreshToken string) error
	DeleteAllByUser(ctx context.Context, userID uint64) error
}

// PasswordHasher is the one-way credential hashing capability.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// TokenIssuer mints and verifies the signed session tokens.
type TokenIssuer interface {
	IssueAccess(userID uint64, role string) (string, error)
	IssueRefresh(userID uint64, role string) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// PublishFunc delivers an auth activity event to the broker.  Publishing
// is best-effort: failures are logged by the publisher and never fail the
// request that triggered them.
type PublishFunc func(ctx context.Context, ev queue.AuthActivityEvent) error

// LoginResult is what a successful login hands to the transport layer.
type LoginResult struct {
	UserID       uint64
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries the fields of a registration request.  Password
// is plaintext here and nowhere else; it is hashed before any store call.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Password  string
	Gender    string
	Category  string
	Role      string
}

// CredentialService wires the stores and crypto services together.  All
// dependencies are injected once at startup; there is no hidden static
// state and no shared mutable state between requests.
type CredentialService struct {
	users    UserStore
	roles    RoleStore
	sessions SessionStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	publish  PublishFunc   // optional
	hashGate chan struct{} // bounds concurrent argon2 computations
}

// NewCredentialService constructs the service.  hashWorkers bounds how
// many argon2 computations may run at once so hashing cannot starve the
// request-accepting path; publish may be nil to disable events.
func NewCredentialService(users UserStore, roles RoleStore, sessions SessionStore,
	hasher PasswordHasher, tokens TokenIssuer, hashWorkers int, publish PublishFunc) *CredentialService {
	if hashWorkers < 1 {
		hashWorkers = 1
	}
	return &CredentialService{
		users:    users,
		roles:    roles,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		publish:  publish,
		hashGate: make(chan struct{}, hashWorkers),
	}
}

// Login runs the credential pipeline for one login attempt.  The steps
// are strictly ordered; no token is minted before the password verified
// and nothing is returned before the session row is persisted.
func (s *CredentialService) Login(ctx context.Context, email, password, deviceInfo string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginResult{}, ErrUserNotFound
		}
		return LoginResult{}, err
	}

	ok, err := s.verifyPassword(ctx, u.PasswordHash, password)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	role, err := s.roles.ResolveForUser(ctx, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRole) {
			// A user without a role should not exist; log the detail
			// server-side, the client sees only an internal error.
			log.Printf("credential: user %d has no resolvable role", u.ID)
			return LoginResult{}, ErrRoleMissing
		}
		return LoginResult{}, err
	}

	access, err := s.tokens.IssueAccess(u.ID, role)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := s.tokens.IssueRefresh(u.ID, role)
	if err != nil {
		return LoginResult{}, err
	}

	// Persist before responding: if the insert fails the minted pair is
	// discarded and the login fails as a whole, so the client can never
	// hold tokens without a matching session row.
	if err := s.sessions.Create(ctx, u.ID, refresh, deviceInfo); err != nil {
		return LoginResult{}, err
	}

	s.emit(ctx, queue.EventLogin, u.ID, deviceInfo)
	return LoginResult{UserID: u.ID, AccessToken: access, RefreshToken: refresh}, nil
}

// Register creates a user with a hashed password and assigns its role.
// A duplicate email or mobile yields ErrConflict.  The wider onboarding
// flow (verification emails, profile data) lives outside this core.
func (s *CredentialService) Register(ctx context.Context, in RegisterInput) (uint64, error) {
	if _, err := s.users.GetByMobile(ctx, in.Mobile); err == nil {
		return 0, ErrConflict
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	hash, err := s.hashPassword(ctx, in.Password)
	if err != nil {
		return 0, err
	}

	role := in.Role
	switch role {
	case model.RoleCustomer, model.RoleVendor:
	default:
		role = model.RoleCustomer
	}

	uid, err := s.users.Create(ctx, model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Mobile:       in.Mobile,
		PasswordHash: hash,
		Gender:       in.Gender,
		Category:     in.Category,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return 0, ErrConflict
		}
		return 0, err
	}
	if err := s.roles.Assign(ctx, uid, role); err != nil {
		return 0, err
	}
	return uid, nil
}

// Refresh exchanges a live refresh token for a new access token.  The
// signature must verify and the session row must still exist; the
// refresh token itself is not rotated.
func (s *CredentialService) Refresh(ctx context.Context, refreshToken string) (uint64, string, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return 0, "", ErrSessionNotFound
	}
	userID, err := s.sessions.FindByToken(ctx, refreshToken)
	if err != nil {
		// Only a genuine miss means the session was revoked; a store
		// failure stays an internal error so the client is not told
		// its token is dead.
		if errors.Is(err, repository.ErrSessionNotFound) {
			return 0, "", ErrSessionNotFound
		}
		return 0, "", err
	}
	if userID != claims.UserID {
		// A signed token pointing at someone else's row means the
		// store and the token disagree; reject.
		return 0, "", ErrSessionNotFound
	}
	access, err := s.tokens.IssueAccess(userID, claims.Role)
	if err != nil {
		return 0, "", err
	}
	return userID, access, nil
}

// Logout revokes sessions for an authenticated user.  With a refresh
// token it deletes that single session; without one it deletes them all.
// Deleting rows that are already gone is a no-op, so logout is
// idempotent.
func (s *CredentialService) Logout(ctx context.Context, userID uint64, refreshToken string) error {
	var err error
	if refreshToken != "" {
		err = s.sessions.DeleteByUserAndToken(ctx, userID, refreshToken)
	} else {
		err = s.sessions.DeleteAllByUser(ctx, userID)
	}
	if err != nil {
		return err
	}
	s.emit(ctx, queue.EventLogout, userID, "")
	return nil
}

// verifyPassword runs the memory-hard comparison behind the hash gate so
// at most hashWorkers argon2 computations run concurrently.  A context
// cancelled while waiting never starts the computation.
func (s *CredentialService) verifyPassword(ctx context.Context, hash, plain string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	select {
	case s.hashGate <- struct{}{}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	defer func() { <-s.hashGate }()
	return s.hasher.Verify(hash, plain), nil
}

// hashPassword derives a new hash behind the same gate.
func (s *CredentialService) hashPassword(ctx context.Context, plain string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	select {
	case s.hashGate <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-s.hashGate }()
	return s.hasher.Hash(plain)
}

// emit publishes an activity event when a publisher is configured.
// Failures are already logged by the publisher; the request outcome does
// not depend on the broker.
func (s *CredentialService) emit(ctx context.Context, event string, userID uint64, device string) {
	if s.publish == nil {
		return
	}
	_ = s.publish(ctx, queue.AuthActivityEvent{
		Event:      event,
		UserID:     userID,
		DeviceInfo: device,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
