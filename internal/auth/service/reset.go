package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phase1912/contacts-auth/internal/auth/domain"
	"github.com/phase1912/contacts-auth/internal/auth/store"
	"github.com/phase1912/contacts-auth/pkg/cryptox"
	"github.com/phase1912/contacts-auth/pkg/jwtx"
	"github.com/phase1912/contacts-auth/pkg/slogx"
)

// RequestPasswordReset issues a single-use reset token and emails it. It
// returns nil whether or not the address has an account, so the endpoint
// cannot be used to enumerate users.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	token, _, err := s.Codec.Issue(user.ID, "", jwtx.PurposeReset, s.resetTTL(), s.now())
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	if err := s.Mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		// Delivery failures stay internal; the response shape never changes.
		l.Error("send password reset email", slog.String("user_id", user.ID), slog.Any("error", err))
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and replaces the password.
// The token is single use, and on success every previously issued token for
// the user stops working.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	l := slogx.FromContext(ctx)
	now := s.now()

	claims, err := s.Codec.Verify(token, jwtx.PurposeReset)
	if err != nil {
		return ErrInvalidToken
	}

	first, err := s.Ledger.Consume(ctx, claims.ID, claims.ExpiresAt.Sub(now)+revocationSkew)
	if err != nil {
		return err
	}
	if !first {
		return ErrInvalidToken
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.Store.Users().UpdatePassword(ctx, claims.Subject, hash, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	// Move the watermark so all outstanding sessions die with the old
	// password. The entry only needs to outlive the longest-lived token.
	if err := s.Ledger.RevokeAllForUser(ctx, claims.Subject, now, s.refreshTTL()+revocationSkew); err != nil {
		return err
	}

	l.Info("password reset completed", slog.String("user_id", claims.Subject))
	return nil
}

// RequestEmailVerification re-sends the verification email. Like the reset
// request, the outcome is identical for unknown and already verified
// addresses.
func (s *AuthService) RequestEmailVerification(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.Verified {
		return nil
	}

	s.sendVerification(ctx, user)
	return nil
}

// ConfirmEmailVerification consumes a verification token and marks the user
// verified. Verifying twice with different tokens is harmless; replaying the
// same token is rejected.
func (s *AuthService) ConfirmEmailVerification(ctx context.Context, token string) error {
	now := s.now()

	claims, err := s.Codec.Verify(token, jwtx.PurposeVerify)
	if err != nil {
		return ErrInvalidToken
	}

	first, err := s.Ledger.Consume(ctx, claims.ID, claims.ExpiresAt.Sub(now)+revocationSkew)
	if err != nil {
		return err
	}
	if !first {
		return ErrInvalidToken
	}

	if err := s.Store.Users().SetVerified(ctx, claims.Subject); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}
