package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the account variant. It is fixed at registration.
type Role string

const (
	RoleMentor Role = "mentor"
	RoleMentee Role = "mentee"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMentor, RoleMentee, RoleAdmin:
		return true
	}
	return false
}

// User is the account record backing the verification and login lifecycle.
// VerificationToken is non-nil only while the account is unverified with a
// pending verification cycle.
type User struct {
	ID                    uuid.UUID  `json:"id"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"` // Never expose password hash in JSON
	Role                  Role       `json:"userType"`
	EmailVerified         bool       `json:"isEmailVerified"`
	VerificationToken     *string    `json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
	LastLoginAt           *time.Time `json:"-"`
	Active                bool       `json:"-"`
	CreatedAt             time.Time  `json:"-"`
	UpdatedAt             time.Time  `json:"-"`
}

// NormalizeEmail lowercases and trims an email address. All storage and
// lookups go through this so the unique-email invariant is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
