package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/arekbor/helpdesk/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "uuid, first_name, last_name, email, avatar_url, created_at, updated_at"

// ListParams narrows and orders the users listing. Search matches a
// substring of the concatenated first and last name.
type ListParams struct {
	Search  string
	OrderBy string // "ASC" or "DESC" on the concatenated name
	Limit   int
	Offset  int
}

// Create inserts a user and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, firstName, lastName, email string, avatarURL *string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (uuid, first_name, last_name, email, avatar_url) VALUES (?,?,?,?,?)",
		id, firstName, lastName, email, avatarURL)
	if err != nil {
		if isDuplicateKey(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByUUID(ctx, id)
}

// GetByUUID fetches a user by primary key.
func (r *UserRepo) GetByUUID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE uuid=? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// List returns users filtered and paged per params.
func (r *UserRepo) List(ctx context.Context, p ListParams) ([]model.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	var args []any

	if p.Search != "" {
		query += " WHERE CONCAT(first_name, last_name) LIKE ?"
		args = append(args, "%"+p.Search+"%")
	}
	if p.OrderBy != "" {
		dir := "DESC"
		if strings.EqualFold(p.OrderBy, "ASC") {
			dir = "ASC"
		}
		query += fmt.Sprintf(" ORDER BY CONCAT(first_name, last_name) %s", dir)
	}
	if p.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, p.Limit, p.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.UUID, &u.FirstName, &u.LastName, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update applies a partial update; empty fields keep their stored value.
func (r *UserRepo) Update(ctx context.Context, id string, firstName, lastName, email string, avatarURL *string) (model.User, error) {
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET
			first_name = COALESCE(NULLIF(?, ''), first_name),
			last_name  = COALESCE(NULLIF(?, ''), last_name),
			email      = COALESCE(NULLIF(?, ''), email),
			avatar_url = COALESCE(?, avatar_url)
		WHERE uuid=?`,
		firstName, lastName, email, avatarURL, id)
	if err != nil {
		if isDuplicateKey(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// could also be a no-op update; confirm existence before 404
		if _, err := r.GetByUUID(ctx, id); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByUUID(ctx, id)
}

// Delete removes a user; credentials, sessions and role assignments cascade.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE uuid=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.UUID, &u.FirstName, &u.LastName, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
