package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/arekbor/helpdesk/internal/model"
)

// SessionRepo persists login sessions keyed by the SHA-256 of the cookie
// token. Revocation is soft: rows are flagged inactive, never deleted.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row for a successful login.
func (r *SessionRepo) Create(ctx context.Context, userUUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (uuid, user_uuid, token_hash, expires_at) VALUES (?,?,?,?)",
		uuid.NewString(), userUUID, tokenHash, expiresAt)
	return err
}

// UserByActiveToken resolves the user behind an unexpired, active session.
// Returns sql.ErrNoRows when the token is unknown, revoked or expired.
func (r *SessionRepo) UserByActiveToken(ctx context.Context, tokenHash string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT u.uuid, u.first_name, u.last_name, u.email, u.avatar_url, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.uuid = s.user_uuid
		WHERE s.token_hash=? AND s.is_active=1 AND s.expires_at > NOW()
		LIMIT 1`,
		tokenHash).Scan(&u.UUID, &u.FirstName, &u.LastName, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Touch extends the session expiry. The same timestamp is written to the
// cookie by the caller, so the two cannot drift.
func (r *SessionRepo) Touch(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET expires_at=? WHERE token_hash=? AND is_active=1", expiresAt, tokenHash)
	return err
}

// Revoke flags a session inactive and reports whether a row was updated.
func (r *SessionRepo) Revoke(ctx context.Context, tokenHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_active=0 WHERE token_hash=? AND is_active=1", tokenHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
