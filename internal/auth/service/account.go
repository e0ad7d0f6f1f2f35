package service

import (
	"context"

	"github.com/phase1912/contacts-auth/internal/auth/domain"
	"github.com/phase1912/contacts-auth/internal/auth/media"
)

// GetUser returns the user's account record.
func (s *AuthService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UpdateAvatar presigns an avatar upload and records the resulting public URL
// on the user. The image bytes go straight from the client to object storage;
// this service never sees them.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID, contentType string) (media.Upload, error) {
	upload, err := s.Media.PresignAvatarUpload(ctx, userID, contentType)
	if err != nil {
		return media.Upload{}, err
	}

	if err := s.Store.Users().UpdateAvatarURL(ctx, userID, upload.PublicURL); err != nil {
		return media.Upload{}, err
	}
	return upload, nil
}
