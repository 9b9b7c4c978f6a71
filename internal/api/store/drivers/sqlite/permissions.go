package sqlite

import (
	"context"
	"database/sql"

	"github.com/comepass/comepass/internal/api/domain"
)

type permissionsRepo struct {
	q dbtx
}

func permissionColumns(alias string) string {
	if alias != "" {
		alias += "."
	}
	return alias + `id, ` + alias + `name, ` + alias + `description, ` +
		alias + `resource, ` + alias + `object_id, ` + alias + `depends_on, ` + alias + `created_at`
}

func scanPermission(row interface{ Scan(...any) error }) (domain.Permission, error) {
	var (
		p         domain.Permission
		objectID  sql.NullInt64
		dependsOn sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &objectID, &dependsOn, &p.CreatedAt)
	if err != nil {
		return domain.Permission{}, mapErr(err)
	}
	if objectID.Valid {
		id := objectID.Int64
		p.ObjectID = &id
	}
	p.DependsOn = dependsOn.String
	return p, nil
}

func (r *permissionsRepo) CreatePermission(ctx context.Context, p domain.Permission) (int64, error) {
	var objectID sql.NullInt64
	if p.ObjectID != nil {
		objectID = sql.NullInt64{Int64: *p.ObjectID, Valid: true}
	}
	var dependsOn sql.NullString
	if p.DependsOn != "" {
		dependsOn = sql.NullString{String: p.DependsOn, Valid: true}
	}

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO permissions (name, description, resource, object_id, depends_on, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Resource, objectID, dependsOn, p.CreatedAt)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.LastInsertId()
}

func (r *permissionsRepo) GetPermissionByName(ctx context.Context, name string) (domain.Permission, error) {
	return scanPermission(r.q.QueryRowContext(ctx,
		`SELECT `+permissionColumns("")+` FROM permissions WHERE name = ?`, name))
}

func (r *permissionsRepo) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+permissionColumns("")+` FROM permissions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
