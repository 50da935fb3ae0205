package model

import "time"

// Role values stored in users.role.  Admins manage rooms and accounts
// and may create priority reservations; members only book for
// themselves.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents an account row in the `users` table.  The password
// is stored only as a bcrypt hash and is never serialized; handlers
// define separate response types with JSON tags.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name.
//  Email        – unique, normalized to lower case.
//  PasswordHash – bcrypt hashed credential.
//  Role         – RoleAdmin or RoleMember.
//  Phone        – E.164 number used for booking notifications.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	Phone        string    // users.phone
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// IsAdmin reports whether the account carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// RefreshToken models an entry in the `refresh_tokens` table.  Only
// the SHA-256 hash of the raw token is persisted, so a leaked table
// cannot be replayed against the refresh endpoint.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the raw token.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the token was revoked (null while active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
