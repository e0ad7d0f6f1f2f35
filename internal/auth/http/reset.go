package http

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/phase1912/contacts-auth/internal/auth/service"
	"github.com/phase1912/contacts-auth/pkg/authapi"
	"github.com/phase1912/contacts-auth/pkg/httpx"
	"github.com/phase1912/contacts-auth/pkg/slogx"
)

// ResetHandler serves the password reset and email verification endpoints.
type ResetHandler struct {
	AuthService *service.AuthService
}

// resetRequestAck is the constant response body for the request endpoints.
// It never varies with whether the address has an account.
var resetRequestAck = authapi.MessageResponse{
	Message: "if the address has an account, an email is on its way",
}

// HandleResetRequest handles POST /auth/reset-password-request.
func (h *ResetHandler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authapi.ResetRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required, is.Email),
	); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.AuthService.RequestPasswordReset(ctx, req.Email); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resetRequestAck)
}

// HandleResetConfirm handles POST /auth/reset-password-confirm.
func (h *ResetHandler) HandleResetConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authapi.ResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Token, validation.Required),
		validation.Field(&req.NewPassword, validation.Required, validation.Length(8, 128)),
	); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.AuthService.ConfirmPasswordReset(ctx, req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			authapi.ErrUnusableToken.WriteError(w)
			return
		}
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authapi.MessageResponse{Message: "password updated"})
}

// HandleVerifyRequest handles POST /auth/verify-email-request.
func (h *ResetHandler) HandleVerifyRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authapi.VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required, is.Email),
	); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.AuthService.RequestEmailVerification(ctx, req.Email); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resetRequestAck)
}

// HandleVerifyConfirm handles GET /auth/verify-email/{token}.
func (h *ResetHandler) HandleVerifyConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.PathValue("token")
	if token == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ConfirmEmailVerification(ctx, token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			authapi.ErrUnusableToken.WriteError(w)
			return
		}
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authapi.MessageResponse{Message: "email verified"})
}
