package media

import (
	"context"
	"fmt"
	"time"

	"github.com/phase1912/contacts-auth/pkg/idx"
)

// StubUploader hands out fake upload slots. Used in development and tests
// when no object storage is configured.
type StubUploader struct {
	BaseURL string
}

func (u *StubUploader) PresignAvatarUpload(_ context.Context, userID, _ string) (Upload, error) {
	base := u.BaseURL
	if base == "" {
		base = "https://media.invalid"
	}
	key := fmt.Sprintf("avatars/%s/%s", userID, idx.New())
	return Upload{
		Key:       key,
		UploadURL: fmt.Sprintf("%s/upload/%s", base, key),
		PublicURL: fmt.Sprintf("%s/%s", base, key),
		ExpiresAt: time.Now().Add(DefaultPresignTTL),
	}, nil
}
