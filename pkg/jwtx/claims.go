package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose tags a token with its intended use. Verification rejects tokens
// presented for a purpose other than the one they were issued with, so a
// refresh token can never pass as an access token and a password-reset
// token can never mint a session.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
	PurposeVerify  Purpose = "email_verification"
	PurposeReset   Purpose = "password_reset"
)

// Default token TTLs. Access tokens are short-lived so that revocation can
// be limited to refresh tokens; verification and reset tokens follow the
// lifetimes promised in the emails we send.
const (
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	DefaultVerifyTokenTTL  = 24 * time.Hour
	DefaultResetTokenTTL   = 1 * time.Hour
)

// Claims are the signed assertions carried by every token the service
// issues. Role is only populated on access tokens; refresh and workflow
// tokens identify the subject and nothing more.
type Claims struct {
	jwt.RegisteredClaims

	// Role of the subject at issue time ("USER", "ADMIN").
	Role string `json:"role,omitempty"`

	// Purpose distinguishes session tokens from workflow tokens.
	Purpose Purpose `json:"purpose"`
}

// NewClaims builds minimally-correct claims for the given subject and purpose.
func NewClaims(
	subject, role string,
	purpose Purpose,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role:    role,
		Purpose: purpose,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. The jti
// is what the revocation ledger keys on, so it must be unguessable.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
