// Package store defines the persistence boundary for the auth service.
// Implementations live under drivers/.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/phase1912/contacts-auth/internal/auth/domain"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists is returned when a uniqueness constraint is violated.
	ErrAlreadyExists = errors.New("store: already exists")
)

// UserRepo provides access to user credential records.
type UserRepo interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) error
	SetVerified(ctx context.Context, id string) error
	SetMFA(ctx context.Context, id string, secret *string, enabledAt *time.Time) error
}

// RevocationRepo persists token revocations and per-user revocation
// watermarks so they survive restarts.
type RevocationRepo interface {
	// InsertRevocation records tokenID as revoked until expiresAt. It
	// reports whether this call created the record; false means the id was
	// already revoked.
	InsertRevocation(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, tokenID string, now time.Time) (bool, error)

	// UpsertUserCutoff sets the revoke-before watermark for a user. An
	// existing later watermark is kept.
	UpsertUserCutoff(ctx context.Context, userID string, cutoff, expiresAt time.Time) error
	GetUserCutoff(ctx context.Context, userID string, now time.Time) (time.Time, bool, error)

	// DeleteExpired removes revocation rows whose retention window has
	// passed and returns how many were deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Tx is the set of repositories available inside a transaction.
type Tx interface {
	Users() UserRepo
	Revocations() RevocationRepo
}

// Store is the root persistence handle.
type Store interface {
	Tx

	// WithTx runs fn inside a transaction, committing on nil and rolling
	// back on error.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	ApplyMigrations() error
	Ping(ctx context.Context) error
	Close() error
}
