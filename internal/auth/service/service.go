// Package service implements the authentication core: registration, login,
// refresh rotation, logout, authorization, and the email verification and
// password reset workflows.
package service

import (
	"time"

	"github.com/phase1912/contacts-auth/internal/auth/ledger"
	"github.com/phase1912/contacts-auth/internal/auth/mail"
	"github.com/phase1912/contacts-auth/internal/auth/media"
	"github.com/phase1912/contacts-auth/internal/auth/store"
	"github.com/phase1912/contacts-auth/pkg/jwtx"
)

// revocationSkew pads ledger entry lifetimes past token expiry so an entry
// never lapses before the token it blocks, even across clock drift.
const revocationSkew = time.Minute

type AuthService struct {
	Store  store.Store
	Ledger ledger.Ledger
	Codec  *jwtx.Codec
	Mailer mail.Mailer
	Media  media.Uploader

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	VerifyTTL  time.Duration
	ResetTTL   time.Duration

	// TOTPIssuer is the issuer shown in authenticator apps.
	TOTPIssuer string

	// RequireVerified blocks login until the email address is confirmed.
	RequireVerified bool

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

func (s *AuthService) verifyTTL() time.Duration {
	if s.VerifyTTL > 0 {
		return s.VerifyTTL
	}
	return jwtx.DefaultVerifyTokenTTL
}

func (s *AuthService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return jwtx.DefaultResetTokenTTL
}
