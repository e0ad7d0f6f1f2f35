// Package media brokers avatar storage. The auth service never touches image
// bytes: it hands clients presigned upload URLs and records the resulting
// object URL on the user.
package media

import (
	"context"
	"time"
)

// DefaultPresignTTL bounds how long a presigned upload URL stays usable.
const DefaultPresignTTL = 15 * time.Minute

// Upload describes a presigned avatar upload slot.
type Upload struct {
	// Key is the object key the client must PUT to.
	Key string
	// UploadURL is the presigned PUT URL.
	UploadURL string
	// PublicURL is where the avatar will be readable once uploaded. It is
	// what gets stored on the user record.
	PublicURL string
	// ExpiresAt is when the upload URL stops working.
	ExpiresAt time.Time
}

// Uploader issues presigned avatar uploads.
type Uploader interface {
	PresignAvatarUpload(ctx context.Context, userID, contentType string) (Upload, error)
}
