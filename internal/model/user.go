package model

import "time"

// Role names assigned through the user_roles table.  A user holds exactly
// one of these at a time; tokens carry the resolved name in their "role"
// claim.
const (
    RoleAdmin    = "ADMIN"
    RoleCustomer = "CUSTOMER"
    RoleVendor   = "VENDOR"
)

// User represents an identity record as stored in the `users` table.
// Each field corresponds to a column.  The json tags are omitted because
// these structs are used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – unique email address (login identifier).
//  Mobile       – unique mobile number (duplicate-check identifier).
//  PasswordHash – argon2id hashed password; the plaintext is never stored.
//  Gender       – business field, read-only input for this core.
//  Category     – business field, read-only input for this core.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    FirstName    string    // users.first_name
    LastName     string    // users.last_name
    Email        string    // users.email
    Mobile       string    // users.mobile
    PasswordHash string    // users.password_hash
    Gender       string    // users.gender
    Category     string    // users.category
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// UserRole maps a user to its single role name via the `user_roles`
// table.  At most one active row exists per user; a user without a row
// cannot be issued tokens.
type UserRole struct {
    UserID uint64 // user_roles.user_id
    Role   string // user_roles.role
}

// Session models an entry in the `sessions` table.  Each session binds a
// user to one issued refresh token and an optional device descriptor.
// The raw token is not stored; only its SHA‑256 hash.  A row exists
// exactly as long as its refresh token has not been revoked; deleting
// the row is the only revocation mechanism.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the session.
//  TokenHash  – SHA‑256 hex digest of the refresh token value.
//  DeviceInfo – free-form client descriptor (nullable).
//  CreatedAt  – timestamp of creation.
type Session struct {
    ID         uint64    // sessions.id
    UserID     uint64    // sessions.user_id
    TokenHash  string    // sessions.token_hash
    DeviceInfo string    // sessions.device_info (empty when absent)
    CreatedAt  time.Time // sessions.created_at
}
