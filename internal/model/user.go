package model

import "time"

// User represents a user account in the database. PasswordHash is never
// serialized outward.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Enabled      bool
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleNames returns the names of the user's roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Role is a named authorization label, e.g. "ROLE_USER". Roles are seeded
// ahead of time and referenced by name.
type Role struct {
	ID   int64
	Name string
}

// PasswordResetToken is a one-time reset capability tied to a single user.
// The row is deleted in the same transaction that applies the new password.
type PasswordResetToken struct {
	ID         int64
	Token      string
	UserID     int64
	ExpiryDate time.Time
}

// SignupRequest represents a registration request.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserDTO represents user data safe for API responses (no credential fields).
// On update a nil Roles slice means "leave the role set unchanged".
type UserDTO struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// NewUserDTO maps a User to its outward representation.
func NewUserDTO(u *User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    u.RoleNames(),
	}
}
