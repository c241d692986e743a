package repository

import (
	"context"
	"database/sql"

	"github.com/arekbor/helpdesk/internal/model"
)

// RoleRepo reads the seeded authorization model and maintains user-role
// assignments.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// RoleForUser resolves the role assigned to a user.
func (r *RoleRepo) RoleForUser(ctx context.Context, userUUID string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx, `
		SELECT r.uuid, r.name, r.description
		FROM user_roles ur
		JOIN roles r ON r.uuid = ur.role_uuid
		WHERE ur.user_uuid=?
		LIMIT 1`,
		userUUID).Scan(&role.UUID, &role.Name, &role.Description)
	return role, err
}

// RoleByName fetches a role by its unique name.
func (r *RoleRepo) RoleByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT uuid, name, description FROM roles WHERE name=? LIMIT 1",
		name).Scan(&role.UUID, &role.Name, &role.Description)
	return role, err
}

// PermissionNames returns the permission names bound to a role.
func (r *RoleRepo) PermissionNames(ctx context.Context, roleUUID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT p.name FROM permissions p
		JOIN role_permissions rp ON p.uuid = rp.permission_uuid
		WHERE rp.role_uuid=?`,
		roleUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Assign binds a user to a role, replacing any previous assignment.
func (r *RoleRepo) Assign(ctx context.Context, userUUID, roleUUID string) error {
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_uuid=?", userUUID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_roles (user_uuid, role_uuid) VALUES (?,?)", userUUID, roleUUID)
	return err
}
