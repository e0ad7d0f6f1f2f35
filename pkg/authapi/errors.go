package authapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/phase1912/contacts-auth/pkg/httpx"
)

// Error codes returned in the "error" field of error responses.
const (
	ErrorCodeInvalidRequest  = "invalid_request"
	ErrorCodeValidationError = "validation_error"
	ErrorCodeInvalidToken    = "invalid_token"
	ErrorCodeInvalidGrant    = "invalid_grant"
	ErrorCodeAccessDenied    = "access_denied"
	ErrorCodeConflict        = "conflict"
	ErrorCodeMFARequired     = "mfa_required"
	ErrorCodeNotVerified     = "email_not_verified"
	ErrorCodeServerError     = "server_error"
)

// APIError is the wire form of every error response: an error code plus a
// human-readable description. It implements the error interface and is used
// both by the server (to write responses) and by the client (to surface
// them).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "invalid_grant")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

// WithDescription returns a copy of the error with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	clone := *e
	clone.Description = desc
	return &clone
}

var (
	// ErrInvalidRequest is returned when the request body cannot be parsed.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrValidation is returned when a parsed request fails field validation.
	ErrValidation = &APIError{
		StatusCode:  http.StatusUnprocessableEntity,
		Code:        ErrorCodeValidationError,
		Description: "one or more fields failed validation",
	}

	// ErrInvalidGrant is returned when credentials or a presented token are
	// invalid, expired, or revoked.
	ErrInvalidGrant = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidGrant,
		Description: "invalid credentials",
	}

	// ErrInvalidToken is returned when a bearer token fails verification.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the token is invalid, expired, or revoked",
	}

	// ErrUnusableToken is returned when an emailed verification or reset
	// token is invalid, expired, or already used. Unlike bearer failures
	// this is a 400: the caller is not authenticating, they followed a
	// dead link.
	ErrUnusableToken = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidToken,
		Description: "the token is invalid, expired, or already used",
	}

	// ErrAccessDenied is returned when the caller's role does not permit the
	// operation.
	ErrAccessDenied = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "insufficient privileges for this operation",
	}

	// ErrConflict is returned when a uniqueness constraint is violated, such
	// as registering an email that is already taken.
	ErrConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeConflict,
		Description: "the resource already exists",
	}

	// ErrMFARequired is returned when login needs a TOTP code.
	ErrMFARequired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeMFARequired,
		Description: "a one-time code is required to complete login",
	}

	// ErrNotVerified is returned when login is blocked pending email
	// verification.
	ErrNotVerified = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeNotVerified,
		Description: "the email address has not been verified",
	}

	// ErrServerError is returned for unexpected internal failures.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "an internal error occurred",
	}
)
