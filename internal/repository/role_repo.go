package repository

import (
	"context"
	"errors"
	"fmt"

	"auth_service/internal/model"

	"github.com/jackc/pgx/v5"
)

// RoleRepository defines operations for role data
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	FindByName(ctx context.Context, name string) (*model.Role, error)
}

type roleRepository struct {
	db DB
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db DB) RoleRepository {
	return &roleRepository{db: db}
}

// Create inserts a new role
func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	sql := `INSERT INTO roles (name) VALUES ($1) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, sql, role.Name).Scan(&role.ID, &role.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create role: %w", ErrUniqueViolation)
		}
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

// FindByName retrieves a role by name. A missing role is (nil, nil).
func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	role := &model.Role{}
	sql := `SELECT id, name, created_at FROM roles WHERE name = $1`
	err := r.db.QueryRow(ctx, sql, name).Scan(&role.ID, &role.Name, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find role by name: %w", err)
	}
	return role, nil
}
