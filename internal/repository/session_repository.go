package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
)

// SessionRepo persists one row per issued refresh token.  Only the
// SHA-256 hash of the token value is stored, so a leaked table cannot be
// replayed against the service.  Rows are independent of one another:
// concurrent creates and deletes for the same user never touch another
// session's row.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// HashToken returns the SHA-256 hex digest under which a refresh token is
// stored.  Exported so tests can assert row existence for a known token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Create inserts a new session row.  It is append-only: each refresh
// token embeds a fresh jti, so the hash never collides with a live row
// and existing sessions are never overwritten.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, refreshToken, deviceInfo string) error {
	device := sql.NullString{String: deviceInfo, Valid: deviceInfo != ""}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash, device_info) VALUES (?,?,?)",
		userID, HashToken(refreshToken), device)
	return err
}

// FindByToken returns the owning user id for a live session, or
// ErrSessionNotFound when the token has been revoked or never existed.
func (r *SessionRepo) FindByToken(ctx context.Context, refreshToken string) (uint64, error) {
	var userID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM sessions WHERE token_hash=? LIMIT 1",
		HashToken(refreshToken)).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// DeleteByUserAndToken revokes a single session.  The user id is part of
// the predicate so one user's logout can never delete another's row.
// Deleting an absent session is not an error.
func (r *SessionRepo) DeleteByUserAndToken(ctx context.Context, userID uint64, refreshToken string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id=? AND token_hash=?",
		userID, HashToken(refreshToken))
	return err
}

// DeleteAllByUser revokes every session the user holds.  Idempotent.
func (r *SessionRepo) DeleteAllByUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id=?",
		userID)
	return err
}
