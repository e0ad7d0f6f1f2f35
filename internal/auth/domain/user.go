package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Email        string // unique, stored lower-cased
	FirstName    string
	LastName     string
	PasswordHash string // argon2id encoded
	Role         Role
	Verified     bool
	AvatarURL    string

	// MFAEnabled is set when the user has activated a TOTP second factor.
	MFAEnabled *time.Time
	// MFASecret holds the base32 TOTP secret while enrolled (nullable).
	MFASecret *string

	// PasswordChangedAt backs the token watermark: session tokens issued
	// before this instant are no longer honoured.
	PasswordChangedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail canonicalizes an email for storage and lookup. Uniqueness
// is enforced on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasMFA reports whether login requires a TOTP code for this user.
func (u User) HasMFA() bool {
	return u.MFAEnabled != nil && u.MFASecret != nil && *u.MFASecret != ""
}
