package http

import (
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/phase1912/contacts-auth/internal/auth/service"
	"github.com/phase1912/contacts-auth/pkg/authapi"
	"github.com/phase1912/contacts-auth/pkg/httpx"
	"github.com/phase1912/contacts-auth/pkg/slogx"
)

// MFAHandler serves the TOTP second factor endpoints.
type MFAHandler struct {
	AuthService *service.AuthService
}

func decodeMFACode(r *http.Request) (authapi.MFACodeRequest, error) {
	var req authapi.MFACodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, err
	}
	return req, validation.ValidateStruct(&req,
		validation.Field(&req.Code, validation.Required, validation.Length(6, 8), is.Digit),
	)
}

// HandleEnroll handles POST /auth/mfa/enroll.
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	enrollment, err := h.AuthService.EnrollMFA(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authapi.MFAEnrollResponse{
		Secret:     enrollment.Secret,
		OTPAuthURL: enrollment.OTPAuthURL,
	})
}

// HandleActivate handles POST /auth/mfa/activate.
func (h *MFAHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	req, err := decodeMFACode(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.AuthService.ActivateMFA(ctx, userID, req.Code); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles DELETE /auth/mfa.
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	req, err := decodeMFACode(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.AuthService.DisableMFA(ctx, userID, req.Code); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
