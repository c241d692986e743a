package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/arekbor/helpdesk/internal/model"
)

// CredentialRepo persists password hashes and email-verification state,
// one row per user.
type CredentialRepo struct{ DB *sql.DB }

func NewCredentialRepo(db *sql.DB) *CredentialRepo { return &CredentialRepo{DB: db} }

// Create inserts a credential row for a freshly registered user. Google
// sign-ins authenticate upstream and get no credential row at all, so otp
// is always set here and cleared on verification.
func (r *CredentialRepo) Create(ctx context.Context, userUUID, passwordHash string, otp *string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO credentials (uuid, user_uuid, password_hash, otp) VALUES (?,?,?,?)",
		uuid.NewString(), userUUID, passwordHash, otp)
	return err
}

// GetByUserUUID fetches the credential row owned by a user.
func (r *CredentialRepo) GetByUserUUID(ctx context.Context, userUUID string) (model.Credential, error) {
	var c model.Credential
	err := r.DB.QueryRowContext(ctx,
		"SELECT uuid, user_uuid, password_hash, otp, is_email_verified, created_at FROM credentials WHERE user_uuid=? LIMIT 1",
		userUUID).Scan(&c.UUID, &c.UserUUID, &c.PasswordHash, &c.OTP, &c.IsEmailVerified, &c.CreatedAt)
	return c, err
}

// MarkEmailVerified sets the verified flag and clears the one-time code in
// the same statement, closing the replay window.
func (r *CredentialRepo) MarkEmailVerified(ctx context.Context, userUUID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE credentials SET is_email_verified=1, otp=NULL WHERE user_uuid=?", userUUID)
	return err
}

// UpdatePassword replaces the stored hash.
func (r *CredentialRepo) UpdatePassword(ctx context.Context, userUUID, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE credentials SET password_hash=? WHERE user_uuid=?", passwordHash, userUUID)
	return err
}
