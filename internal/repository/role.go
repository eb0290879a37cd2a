package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kingtan/api-users/internal/model"
)

var ErrRoleNotFound = errors.New("role not found")

// RoleRepository handles role lookups. Roles are seed data; this repository
// never writes.
type RoleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetByName retrieves a role by its unique name.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	role := &model.Role{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM roles WHERE name = ?`, name,
	).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

// List retrieves all roles.
func (r *RoleRepository) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
