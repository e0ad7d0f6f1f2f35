package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/phase1912/contacts-auth/internal/auth/domain"
	"github.com/phase1912/contacts-auth/internal/auth/service"
	"github.com/phase1912/contacts-auth/pkg/authapi"
	"github.com/phase1912/contacts-auth/pkg/httpx"
	"github.com/phase1912/contacts-auth/pkg/slogx"
)

// AccountHandler serves the authenticated account endpoints.
type AccountHandler struct {
	AuthService *service.AuthService
}

// HandleMe handles GET /auth/me.
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.AuthService.GetUser(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleAvatar handles PATCH /auth/avatar. The route is admin gated; the
// response carries a presigned URL the client PUTs the image to.
func (h *AccountHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	var req authapi.AvatarUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.ContentType, validation.Required,
			validation.By(imageContentType)),
	); err != nil {
		writeValidationError(w, err)
		return
	}

	upload, err := h.AuthService.UpdateAvatar(ctx, userID, req.ContentType)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authapi.AvatarUploadResponse{
		UploadURL: upload.UploadURL,
		AvatarURL: upload.PublicURL,
		ExpiresAt: upload.ExpiresAt,
	})
}

func imageContentType(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "image/") {
		return errors.New("must be an image content type")
	}
	return nil
}

func toUserResponse(u domain.User) authapi.UserResponse {
	return authapi.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       string(u.Role),
		Verified:   u.Verified,
		AvatarURL:  u.AvatarURL,
		MFAEnabled: u.HasMFA(),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toTokenResponse(p domain.TokenPair) authapi.TokenResponse {
	return authapi.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    int(p.ExpiresIn.Seconds()),
	}
}
