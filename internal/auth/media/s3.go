package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/phase1912/contacts-auth/pkg/idx"
)

// S3Config holds the object storage settings. BaseEndpoint is set when
// pointing at a MinIO or other S3-compatible endpoint instead of AWS.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string

	// PublicBaseURL is the read side of the bucket, e.g. a CDN. When empty
	// the bucket endpoint itself is used.
	PublicBaseURL string

	PresignTTL time.Duration
}

// S3Uploader issues presigned PUT URLs against an S3-compatible bucket.
type S3Uploader struct {
	cfg     S3Config
	presign *s3.PresignClient
}

func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = DefaultPresignTTL
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		cfg:     cfg,
		presign: s3.NewPresignClient(client),
	}, nil
}

func (u *S3Uploader) PresignAvatarUpload(ctx context.Context, userID, contentType string) (Upload, error) {
	// A fresh key per upload so a stale presigned URL can never overwrite a
	// newer avatar.
	key := fmt.Sprintf("avatars/%s/%s", userID, idx.New())

	req, err := u.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(u.cfg.PresignTTL))
	if err != nil {
		return Upload{}, fmt.Errorf("presign put: %w", err)
	}

	return Upload{
		Key:       key,
		UploadURL: req.URL,
		PublicURL: u.publicURL(key),
		ExpiresAt: time.Now().Add(u.cfg.PresignTTL),
	}, nil
}

func (u *S3Uploader) publicURL(key string) string {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key
	}
	if u.cfg.BaseEndpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.cfg.BaseEndpoint, "/"), u.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}
