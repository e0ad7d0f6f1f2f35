package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type revocationsRepo struct {
	db dbtx
}

// InsertRevocation claims tokenID atomically: ON CONFLICT DO NOTHING plus the
// rows-affected count turns the insert into a compare-and-set. An expired row
// under the same id is reclaimed first so short ids can be reused safely.
func (r *revocationsRepo) InsertRevocation(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	now := time.Now().UTC()

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM revocations WHERE token_id = ? AND expires_at <= ?`,
		tokenID, now,
	); err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO revocations (token_id, expires_at) VALUES (?, ?)
		ON CONFLICT (token_id) DO NOTHING`,
		tokenID, expiresAt.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *revocationsRepo) IsRevoked(ctx context.Context, tokenID string, now time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM revocations WHERE token_id = ? AND expires_at > ?`,
		tokenID, now.UTC(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *revocationsRepo) UpsertUserCutoff(ctx context.Context, userID string, cutoff, expiresAt time.Time) error {
	// MAX keeps the later watermark on repeated resets.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_revocations (user_id, revoked_before, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			revoked_before = MAX(revoked_before, excluded.revoked_before),
			expires_at     = MAX(expires_at, excluded.expires_at)`,
		userID, cutoff.UTC(), expiresAt.UTC(),
	)
	return err
}

func (r *revocationsRepo) GetUserCutoff(ctx context.Context, userID string, now time.Time) (time.Time, bool, error) {
	var cutoff time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT revoked_before FROM user_revocations
		WHERE user_id = ? AND expires_at > ?`,
		userID, now.UTC(),
	).Scan(&cutoff)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return cutoff, true, nil
}

func (r *revocationsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM revocations WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	total += n

	res, err = r.db.ExecContext(ctx,
		`DELETE FROM user_revocations WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return total, err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return total, err
	}
	return total + n, nil
}
