package ledger

import (
	"context"
	"time"

	"github.com/phase1912/contacts-auth/internal/auth/store"
)

// StoreLedger persists revocations through a store.RevocationRepo so they
// survive process restarts. The atomicity of Revoke comes from the
// repository's conditional insert.
type StoreLedger struct {
	revocations store.RevocationRepo
	nowFunc     func() time.Time
}

func NewStoreLedger(revocations store.RevocationRepo) *StoreLedger {
	return &StoreLedger{
		revocations: revocations,
		nowFunc:     time.Now,
	}
}

func (l *StoreLedger) Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	return l.revocations.InsertRevocation(ctx, tokenID, l.nowFunc().Add(ttl))
}

func (l *StoreLedger) Consume(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	return l.Revoke(ctx, tokenID, ttl)
}

func (l *StoreLedger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return l.revocations.IsRevoked(ctx, tokenID, l.nowFunc())
}

func (l *StoreLedger) RevokeAllForUser(ctx context.Context, userID string, cutoff time.Time, ttl time.Duration) error {
	return l.revocations.UpsertUserCutoff(ctx, userID, cutoff, l.nowFunc().Add(ttl))
}

func (l *StoreLedger) UserCutoff(ctx context.Context, userID string) (time.Time, bool, error) {
	return l.revocations.GetUserCutoff(ctx, userID, l.nowFunc())
}

func (l *StoreLedger) Close() error { return nil }
