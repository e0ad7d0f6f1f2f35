package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/phase1912/contacts-auth/internal/auth/domain"
	"github.com/phase1912/contacts-auth/internal/auth/store"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "auth.db")
	s, err := NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testUser(id, email string) domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.User{
		ID:                id,
		Email:             email,
		FirstName:         "Ada",
		LastName:          "Lovelace",
		PasswordHash:      "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Role:              domain.RoleUser,
		PasswordChangedAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestUsersCreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := testUser("user-1", "ada@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.Equal(t, domain.RoleUser, got.Role)
	require.False(t, got.Verified)
	require.Nil(t, got.MFASecret)

	got, err = s.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, "user-1", got.ID)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().CreateUser(ctx, testUser("user-1", "dup@example.com")))

	err := s.Users().CreateUser(ctx, testUser("user-2", "dup@example.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersUpdates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().CreateUser(ctx, testUser("user-1", "u@example.com")))

	changedAt := time.Now().UTC().Add(time.Minute).Truncate(time.Second)
	require.NoError(t, s.Users().UpdatePassword(ctx, "user-1", "new-hash", changedAt))
	require.NoError(t, s.Users().SetVerified(ctx, "user-1"))
	require.NoError(t, s.Users().UpdateAvatarURL(ctx, "user-1", "https://cdn.example.com/a.png"))

	secret := "JBSWY3DPEHPK3PXP"
	enabled := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.Users().SetMFA(ctx, "user-1", &secret, &enabled))

	got, err := s.Users().GetUserByID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.True(t, got.Verified)
	require.Equal(t, "https://cdn.example.com/a.png", got.AvatarURL)
	require.True(t, got.HasMFA())
	require.True(t, got.PasswordChangedAt.Equal(changedAt))

	// Clearing MFA nulls both columns.
	require.NoError(t, s.Users().SetMFA(ctx, "user-1", nil, nil))
	got, err = s.Users().GetUserByID(ctx, "user-1")
	require.NoError(t, err)
	require.False(t, got.HasMFA())

	require.ErrorIs(t, s.Users().SetVerified(ctx, "missing"), store.ErrNotFound)
}

func TestRevocationsInsertIsCompareAndSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	expires := time.Now().UTC().Add(time.Hour)

	first, err := s.Revocations().InsertRevocation(ctx, "jti-1", expires)
	require.NoError(t, err)
	require.True(t, first)

	second, err := s.Revocations().InsertRevocation(ctx, "jti-1", expires)
	require.NoError(t, err)
	require.False(t, second)

	revoked, err := s.Revocations().IsRevoked(ctx, "jti-1", time.Now().UTC())
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = s.Revocations().IsRevoked(ctx, "jti-other", time.Now().UTC())
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRevocationsExpiredRowIsReclaimed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	past := time.Now().UTC().Add(-time.Hour)
	first, err := s.Revocations().InsertRevocation(ctx, "jti-old", past)
	require.NoError(t, err)
	require.True(t, first)

	revoked, err := s.Revocations().IsRevoked(ctx, "jti-old", time.Now().UTC())
	require.NoError(t, err)
	require.False(t, revoked)

	// The expired row must not block a fresh revocation of the same id.
	first, err = s.Revocations().InsertRevocation(ctx, "jti-old", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	require.True(t, first)
}

func TestRevocationsUserCutoffKeepsLatest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	expires := now.Add(time.Hour)

	_, ok, err := s.Revocations().GetUserCutoff(ctx, "user-1", now)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Revocations().UpsertUserCutoff(ctx, "user-1", now, expires))

	later := now.Add(time.Minute)
	require.NoError(t, s.Revocations().UpsertUserCutoff(ctx, "user-1", later, expires))
	require.NoError(t, s.Revocations().UpsertUserCutoff(ctx, "user-1", now, expires))

	cutoff, ok, err := s.Revocations().GetUserCutoff(ctx, "user-1", now)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, cutoff.Equal(later))
}

func TestRevocationsDeleteExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()

	_, err := s.Revocations().InsertRevocation(ctx, "jti-live", now.Add(time.Hour))
	require.NoError(t, err)
	_, err = s.Revocations().InsertRevocation(ctx, "jti-dead", now.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.Revocations().UpsertUserCutoff(ctx, "user-dead", now.Add(-2*time.Hour), now.Add(-time.Hour)))

	deleted, err := s.Revocations().DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	revoked, err := s.Revocations().IsRevoked(ctx, "jti-live", now)
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	sentinel := store.ErrAlreadyExists
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, testUser("user-tx", "tx@example.com")); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = s.Users().GetUserByID(ctx, "user-tx")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, testUser("user-tx", "tx@example.com"))
	})
	require.NoError(t, err)

	got, err := s.Users().GetUserByID(ctx, "user-tx")
	require.NoError(t, err)
	require.Equal(t, "tx@example.com", got.Email)
}
