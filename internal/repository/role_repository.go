package repository

import (
	"context"
	"database/sql"
)

// RoleRepo resolves and assigns the single role held by a user
// (user_roles holds at most one row per user id).
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// ResolveForUser returns the role name assigned to the user, or ErrNoRole
// when no row exists.
func (r *RoleRepo) ResolveForUser(ctx context.Context, userID uint64) (string, error) {
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT role FROM user_roles WHERE user_id=? LIMIT 1",
		userID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", ErrNoRole
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// Assign sets the user's role, replacing any previous assignment.  Used
// at registration time.
func (r *RoleRepo) Assign(ctx context.Context, userID uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role) VALUES (?,?) ON DUPLICATE KEY UPDATE role=VALUES(role)",
		userID, role)
	return err
}
