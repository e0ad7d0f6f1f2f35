package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/phase1912/contacts-auth/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, first_name, last_name, password_hash, role,
	verified, avatar_url, mfa_secret, mfa_enabled, password_changed_at,
	created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, first_name, last_name, password_hash, role,
			verified, avatar_url, mfa_secret, mfa_enabled,
			password_changed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		string(u.Role), u.Verified, mapStringNull(u.AvatarURL),
		mapOptionalString(u.MFASecret), mapOptionalTime(u.MFAEnabled),
		u.PasswordChangedAt, u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET password_hash = ?, password_changed_at = ?, updated_at = ?
		WHERE id = ?`,
		passwordHash, changedAt, changedAt, id,
	)
}

// UpdateRole changes a user's role. Promotion to ADMIN happens through
// operator tooling, not the public API.
func (r *usersRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.exec(ctx, `
		UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		string(role), id,
	)
}

func (r *usersRepo) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	return r.exec(ctx, `
		UPDATE users SET avatar_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		mapStringNull(avatarURL), id,
	)
}

func (r *usersRepo) SetVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `
		UPDATE users SET verified = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		id,
	)
}

func (r *usersRepo) SetMFA(ctx context.Context, id string, secret *string, enabledAt *time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET mfa_secret = ?, mfa_enabled = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		mapOptionalString(secret), mapOptionalTime(enabledAt), id,
	)
}

// exec runs an UPDATE that targets a single user and maps a zero rows-affected
// result to store.ErrNotFound.
func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u          domain.User
		role       string
		avatarURL  sql.NullString
		mfaSecret  sql.NullString
		mfaEnabled sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &role,
		&u.Verified, &avatarURL, &mfaSecret, &mfaEnabled,
		&u.PasswordChangedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Role = domain.Role(role)
	u.AvatarURL = mapNullString(avatarURL)
	u.MFASecret = mapNullStringPtr(mfaSecret)
	u.MFAEnabled = mapNullTimePtr(mfaEnabled)
	return u, nil
}
