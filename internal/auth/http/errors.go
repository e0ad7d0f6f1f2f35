package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phase1912/contacts-auth/internal/auth/service"
	"github.com/phase1912/contacts-auth/internal/auth/store"
	"github.com/phase1912/contacts-auth/pkg/authapi"
)

// writeServiceError maps service errors onto the wire taxonomy. Anything not
// recognized is logged and surfaced as an opaque 500.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		authapi.ErrInvalidGrant.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken):
		authapi.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		authapi.ErrConflict.WithDescription("an account with this email already exists").WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		authapi.ErrAccessDenied.WriteError(w)
	case errors.Is(err, service.ErrNotVerified):
		authapi.ErrNotVerified.WriteError(w)
	case errors.Is(err, service.ErrMFARequired):
		authapi.ErrMFARequired.WriteError(w)
	case errors.Is(err, service.ErrInvalidTOTPCode):
		authapi.ErrInvalidGrant.WithDescription("invalid one-time code").WriteError(w)
	case errors.Is(err, service.ErrMFANotEnabled):
		authapi.ErrInvalidRequest.WithDescription("MFA is not enabled for this account").WriteError(w)
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		authapi.ErrConflict.WithDescription("MFA is already enabled for this account").WriteError(w)
	case errors.Is(err, store.ErrNotFound):
		authapi.ErrInvalidToken.WriteError(w)
	default:
		log.Error("request failed", "err", err)
		authapi.ErrServerError.WriteError(w)
	}
}

// writeValidationError reports field validation failures as 422 with the
// offending fields in the description.
func writeValidationError(w http.ResponseWriter, err error) {
	authapi.ErrValidation.WithDescription(err.Error()).WriteError(w)
}
