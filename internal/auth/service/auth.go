package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pquerna/otp/totp"

	"github.com/phase1912/contacts-auth/internal/auth/domain"
	"github.com/phase1912/contacts-auth/internal/auth/store"
	"github.com/phase1912/contacts-auth/pkg/cryptox"
	"github.com/phase1912/contacts-auth/pkg/idx"
	"github.com/phase1912/contacts-auth/pkg/jwtx"
	"github.com/phase1912/contacts-auth/pkg/slogx"
)

// dummyHash is verified against when the email is unknown so login takes the
// same time whether or not the account exists.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a new USER account and kicks off email verification. The
// first registered user is not special; admins are promoted out of band.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	now := s.now()

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:                idx.New().String(),
		Email:             domain.NormalizeEmail(in.Email),
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		PasswordHash:      hash,
		Role:              domain.RoleUser,
		PasswordChangedAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	s.sendVerification(ctx, user)

	return user, nil
}

// Login verifies credentials and issues a fresh token pair. When the account
// has a TOTP second factor, otpCode must carry a currently valid code.
func (s *AuthService) Login(ctx context.Context, email, password, otpCode string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same hashing cost as a real account.
			_ = cryptox.VerifyPassword(password, dummyHash)
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login failed", slog.String("user_id", user.ID))
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	if s.RequireVerified && !user.Verified {
		return domain.TokenPair{}, ErrNotVerified
	}

	if user.HasMFA() {
		if otpCode == "" {
			return domain.TokenPair{}, ErrMFARequired
		}
		if !totp.Validate(otpCode, *user.MFASecret) {
			l.Info("login totp rejected", slog.String("user_id", user.ID))
			return domain.TokenPair{}, ErrInvalidTOTPCode
		}
	}

	return s.issuePair(user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair minted. With concurrent calls on the same token exactly one caller
// wins; the rest get ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	claims, err := s.Codec.Verify(refreshToken, jwtx.PurposeRefresh)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidToken
	}

	if stale, err := s.issuedBeforeCutoff(ctx, claims); err != nil {
		return domain.TokenPair{}, err
	} else if stale {
		return domain.TokenPair{}, ErrInvalidToken
	}

	// Revoke before minting. The ledger insert is the only writer that can
	// win, so a replayed token can never produce a second pair.
	first, err := s.Ledger.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(now)+revocationSkew)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !first {
		l.Warn("refresh token replay detected", slog.String("user_id", claims.Subject))
		return domain.TokenPair{}, ErrInvalidToken
	}

	// Re-read the user so role changes and deletions take effect at rotation.
	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidToken
		}
		return domain.TokenPair{}, err
	}

	return s.issuePair(user)
}

// Logout revokes the presented refresh token after checking it belongs to
// subject, the authenticated caller. Revoking an already revoked token is
// not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, subject, refreshToken string) error {
	claims, err := s.Codec.Verify(refreshToken, jwtx.PurposeRefresh)
	if err != nil {
		// Expired or garbage tokens have nothing left to revoke.
		return nil
	}

	if claims.Subject != subject {
		return ErrInvalidToken
	}

	_, err = s.Ledger.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(s.now())+revocationSkew)
	return err
}

// Authorize validates an access token and checks the caller's role against
// required. It returns the verified claims for the request context.
func (s *AuthService) Authorize(ctx context.Context, accessToken string, required domain.Role) (jwtx.Claims, error) {
	claims, err := s.Codec.Verify(accessToken, jwtx.PurposeAccess)
	if err != nil {
		return jwtx.Claims{}, ErrInvalidToken
	}

	if stale, err := s.issuedBeforeCutoff(ctx, claims); err != nil {
		return jwtx.Claims{}, err
	} else if stale {
		return jwtx.Claims{}, ErrInvalidToken
	}

	if !domain.Role(claims.Role).Satisfies(required) {
		return jwtx.Claims{}, ErrForbidden
	}

	return claims, nil
}

// issuedBeforeCutoff reports whether the token predates the user's revocation
// watermark. A password reset moves the watermark, which kills every
// previously issued token for that user at once.
func (s *AuthService) issuedBeforeCutoff(ctx context.Context, claims jwtx.Claims) (bool, error) {
	cutoff, ok, err := s.Ledger.UserCutoff(ctx, claims.Subject)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	// iat carries second resolution, so a token minted within the cutoff's
	// second counts as stale. Fails closed for up to a second after a reset.
	return !claims.IssuedAt.Time.After(cutoff), nil
}

func (s *AuthService) issuePair(user domain.User) (domain.TokenPair, error) {
	now := s.now()

	access, _, err := s.Codec.Issue(user.ID, string(user.Role), jwtx.PurposeAccess, s.accessTTL(), now)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	// Only access tokens carry the role; refresh re-reads the user, so a
	// stale role can never outlive an access TTL.
	refresh, _, err := s.Codec.Issue(user.ID, "", jwtx.PurposeRefresh, s.refreshTTL(), now)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.accessTTL(),
	}, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user domain.User) {
	l := slogx.FromContext(ctx)

	token, _, err := s.Codec.Issue(user.ID, "", jwtx.PurposeVerify, s.verifyTTL(), s.now())
	if err != nil {
		l.Error("issue verification token", slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}
	if err := s.Mailer.SendVerification(ctx, user.Email, token); err != nil {
		l.Error("send verification email", slog.String("user_id", user.ID), slog.Any("error", err))
	}
}
