package model

import (
	"errors"
	"strings"
	"time"
)

// Role is a user's role within a team.
type Role string

const (
	RoleTester    Role = "TESTER"
	RoleDeveloper Role = "DEVELOPER"
	RoleManager   Role = "MANAGER"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTester, RoleDeveloper, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// RoleGrant assigns a role within one team.
type RoleGrant struct {
	TeamID string `json:"teamId"`
	Role   Role   `json:"role"`
}

// Hasher computes a password hash. It is satisfied by auth.PasswordHasher.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

var ErrEmptyPassword = errors.New("password must not be empty")

// User is an identity and credential record. Secret fields are never
// serialized; use Public for anything that leaves the service.
type User struct {
	ID                string      `json:"id"`
	Email             string      `json:"email"`
	FirstName         string      `json:"firstName"`
	LastName          string      `json:"lastName"`
	PasswordHash      string      `json:"-"`
	Verified          bool        `json:"verified"`
	VerificationCode  string      `json:"-"`
	PasswordResetCode *string     `json:"-"`
	Roles             []RoleGrant `json:"roles"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// PublicUser is the redacted user representation returned to callers and
// embedded in access tokens.
type PublicUser struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Verified  bool        `json:"verified"`
	Roles     []RoleGrant `json:"roles"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword hashes plaintext and stores the result. It is the only way a
// password reaches a User.
func (u *User) SetPassword(h Hasher, plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	hash, err := h.Hash(plaintext)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Public strips the password hash and single-use codes.
func (u *User) Public() PublicUser {
	roles := make([]RoleGrant, len(u.Roles))
	copy(roles, u.Roles)
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Verified:  u.Verified,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
