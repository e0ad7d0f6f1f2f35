package service

import (
	"context"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// MFAEnrollment is returned from EnrollMFA so the client can render a QR code.
type MFAEnrollment struct {
	Secret string `json:"secret"`
	// OTPAuthURL is the otpauth:// URL encoding issuer, account, and secret.
	OTPAuthURL string `json:"otpauth_url"`
}

// EnrollMFA generates a TOTP secret for the user. MFA is not active until the
// user proves possession via ActivateMFA.
func (s *AuthService) EnrollMFA(ctx context.Context, userID string) (MFAEnrollment, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return MFAEnrollment{}, err
	}
	if user.HasMFA() {
		return MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.TOTPIssuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return MFAEnrollment{}, fmt.Errorf("generate totp key: %w", err)
	}

	secret := key.Secret()
	if err := s.Store.Users().SetMFA(ctx, userID, &secret, nil); err != nil {
		return MFAEnrollment{}, err
	}

	return MFAEnrollment{
		Secret:     secret,
		OTPAuthURL: key.URL(),
	}, nil
}

// ActivateMFA turns the enrolled secret on after the user submits a valid
// code generated from it.
func (s *AuthService) ActivateMFA(ctx context.Context, userID, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.HasMFA() {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotEnabled
	}

	if !totp.Validate(code, *user.MFASecret) {
		return ErrInvalidTOTPCode
	}

	now := s.now()
	return s.Store.Users().SetMFA(ctx, userID, user.MFASecret, &now)
}

// DisableMFA removes the second factor. A valid current code is required so
// a hijacked session cannot silently weaken the account.
func (s *AuthService) DisableMFA(ctx context.Context, userID, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasMFA() {
		return ErrMFANotEnabled
	}

	if !totp.Validate(code, *user.MFASecret) {
		return ErrInvalidTOTPCode
	}

	return s.Store.Users().SetMFA(ctx, userID, nil, nil)
}
