// Package ledger tracks invalidated token identifiers. Entries live only as
// long as the token they refer to could still be presented, so the ledger
// self-prunes and stays proportional to the number of live tokens.
package ledger

import (
	"context"
	"time"
)

// Ledger is the revocation store consulted on every refresh and on every
// one-time token consumption. Implementations must make Revoke and Consume
// atomic check-and-set operations: when N goroutines race on the same id,
// exactly one call returns first=true.
type Ledger interface {
	// Revoke marks a token id as revoked for ttl. It returns true when this
	// call performed the revocation and false when the id was already
	// revoked. Refresh rotation relies on this being a single atomic step.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) (first bool, err error)

	// IsRevoked reports whether a token id is currently revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// Consume marks a one-time token (verification, reset) as used. Same
	// CAS semantics as Revoke; the distinct name records intent.
	Consume(ctx context.Context, tokenID string, ttl time.Duration) (first bool, err error)

	// RevokeAllForUser records a per-user cutoff: session tokens issued at
	// or before cutoff are no longer honoured. Used by password reset to
	// force re-login everywhere. The watermark expires with the longest
	// outstanding refresh token.
	RevokeAllForUser(ctx context.Context, userID string, cutoff time.Time, ttl time.Duration) error

	// UserCutoff returns the active watermark for a user, if any.
	UserCutoff(ctx context.Context, userID string) (time.Time, bool, error)

	// Close releases any background resources.
	Close() error
}
