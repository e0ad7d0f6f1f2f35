package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client is a thin client for the auth service. It is used by the end-to-end
// tests and is suitable for other services that need to call the API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	var out UserResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &out)
	return out, err
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", "", RefreshRequest{RefreshToken: refreshToken}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", accessToken, LogoutRequest{RefreshToken: refreshToken}, nil)
}

func (c *Client) Me(ctx context.Context, accessToken string) (UserResponse, error) {
	var out UserResponse
	err := c.do(ctx, http.MethodGet, "/auth/me", accessToken, nil, &out)
	return out, err
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password-request", "", ResetRequestRequest{Email: email}, nil)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password-confirm", "",
		ResetConfirmRequest{Token: token, NewPassword: newPassword}, nil)
}

func (c *Client) RequestEmailVerification(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/verify-email-request", "", VerificationRequest{Email: email}, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodGet, "/auth/verify-email/"+token, "", nil, nil)
}

func (c *Client) EnrollMFA(ctx context.Context, accessToken string) (MFAEnrollResponse, error) {
	var out MFAEnrollResponse
	err := c.do(ctx, http.MethodPost, "/auth/mfa/enroll", accessToken, nil, &out)
	return out, err
}

func (c *Client) ActivateMFA(ctx context.Context, accessToken, code string) error {
	return c.do(ctx, http.MethodPost, "/auth/mfa/activate", accessToken, MFACodeRequest{Code: code}, nil)
}

func (c *Client) DisableMFA(ctx context.Context, accessToken, code string) error {
	return c.do(ctx, http.MethodDelete, "/auth/mfa", accessToken, MFACodeRequest{Code: code}, nil)
}

func (c *Client) UpdateAvatar(ctx context.Context, accessToken, contentType string) (AvatarUploadResponse, error) {
	var out AvatarUploadResponse
	err := c.do(ctx, http.MethodPatch, "/auth/avatar", accessToken, AvatarUploadRequest{ContentType: contentType}, &out)
	return out, err
}

func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out)
	return out, err
}

// do performs a JSON request and decodes the response into out. Non-2xx
// responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Code = ErrorCodeServerError
			apiErr.Description = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
