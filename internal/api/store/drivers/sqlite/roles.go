package sqlite

import (
	"context"
	"fmt"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/store"
)

type rolesRepo struct {
	q dbtx
}

const roleColumns = `id, name, description, is_group, is_active, created_at`

func scanRole(row interface{ Scan(...any) error }) (domain.Role, error) {
	var (
		role          domain.Role
		group, active int
	)
	err := row.Scan(&role.ID, &role.Name, &role.Description, &group, &active, &role.CreatedAt)
	if err != nil {
		return domain.Role{}, mapErr(err)
	}
	role.IsGroup = group != 0
	role.IsActive = active != 0
	return role, nil
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id int64) (domain.Role, error) {
	role, err := scanRole(r.q.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = ?`, id))
	if err != nil {
		return domain.Role{}, err
	}
	return r.attachPermissions(ctx, role)
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	role, err := scanRole(r.q.QueryRowContext(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE name = ?`, name))
	if err != nil {
		return domain.Role{}, err
	}
	return r.attachPermissions(ctx, role)
}

func (r *rolesRepo) ListRoles(ctx context.Context, page store.Page) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+roleColumns+` FROM roles ORDER BY id LIMIT ? OFFSET ?`,
		fetchLimit(page), page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		roles[i], err = r.attachPermissions(ctx, roles[i])
		if err != nil {
			return nil, err
		}
	}
	return roles, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role, permissionNames []string) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO roles (name, description, is_group, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		role.Name, role.Description, boolToInt(role.IsGroup), boolToInt(role.IsActive), role.CreatedAt)
	if err != nil {
		return 0, mapErr(err)
	}
	roleID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, name := range permissionNames {
		res, err := r.q.ExecContext(ctx,
			`INSERT INTO role_permissions (role_id, permission_id)
			 SELECT ?, id FROM permissions WHERE name = ?`,
			roleID, name)
		if err != nil {
			return 0, mapErr(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("attach permission %q: %w", name, store.ErrNotFound)
		}
	}
	return roleID, nil
}

func (r *rolesRepo) AssignUserRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID, roleID)
	return mapErr(err)
}

func (r *rolesRepo) ListUserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT r.name
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ? AND r.is_active = 1
		 ORDER BY r.name`,
		userID)
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

func (r *rolesRepo) attachPermissions(ctx context.Context, role domain.Role) (domain.Role, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+permissionColumns(`p`)+`
		 FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = ?
		 ORDER BY p.id`,
		role.ID)
	if err != nil {
		return domain.Role{}, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return domain.Role{}, err
		}
		role.Permissions = append(role.Permissions, p)
	}
	return role, rows.Err()
}
