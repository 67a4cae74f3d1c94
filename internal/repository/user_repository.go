package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bazario/auth-service/internal/model"
)

// UserRepo reads and writes the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user row and returns its ID.  The password must
// already be hashed by the caller; this layer never sees plaintext.
// Unique-key violations on email or mobile map to ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, mobile, password_hash, gender, category) VALUES (?,?,?,?,?,?,?)",
		u.FirstName, u.LastName, strings.ToLower(strings.TrimSpace(u.Email)), u.Mobile, u.PasswordHash, u.Gender, u.Category)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,first_name,last_name,email,mobile,password_hash,gender,category,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Mobile, &u.PasswordHash, &u.Gender, &u.Category, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByMobile fetches a user by mobile number.  Used for the
// registration duplicate check; login keys on email only.
func (r *UserRepo) GetByMobile(ctx context.Context, mobile string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,first_name,last_name,email,mobile,password_hash,gender,category,created_at,updated_at FROM users WHERE mobile=? LIMIT 1",
		strings.TrimSpace(mobile)).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Mobile, &u.PasswordHash, &u.Gender, &u.Category, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,first_name,last_name,email,mobile,password_hash,gender,category,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Mobile, &u.PasswordHash, &u.Gender, &u.Category, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
