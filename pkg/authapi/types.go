// Package authapi defines the wire types of the auth HTTP API, shared by the
// server handlers and the thin Go client.
package authapi

import "time"

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// LoginRequest is the body of POST /auth/login. OTPCode is required only for
// accounts with an active second factor.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is the body of POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned from login and refresh.
type TokenResponse struct {
	// AccessToken is the JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT used to obtain a replacement pair
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// UserResponse is a user's account record as returned from GET /auth/me.
type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       string    `json:"role"`
	Verified   bool      `json:"verified"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	MFAEnabled bool      `json:"mfa_enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ResetRequestRequest is the body of POST /auth/reset-password-request.
type ResetRequestRequest struct {
	Email string `json:"email"`
}

// ResetConfirmRequest is the body of POST /auth/reset-password-confirm.
type ResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// VerificationRequest is the body of POST /auth/verify-email-request.
type VerificationRequest struct {
	Email string `json:"email"`
}

// MessageResponse is the constant-shape acknowledgement returned by the
// enumeration-resistant endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// MFAEnrollResponse is returned from POST /auth/mfa/enroll.
type MFAEnrollResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// MFACodeRequest carries a TOTP code for activation or disable.
type MFACodeRequest struct {
	Code string `json:"code"`
}

// AvatarUploadRequest is the body of PATCH /auth/avatar.
type AvatarUploadRequest struct {
	ContentType string `json:"content_type"`
}

// AvatarUploadResponse describes the presigned upload slot.
type AvatarUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	AvatarURL string    `json:"avatar_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResponse is returned from the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}
