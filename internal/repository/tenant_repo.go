package repository

import (
	"context"
	"database/sql"
	"fmt"

	"app/internal/model"
)

// TenantRepository defines methods for accessing tenant data.
type TenantRepository interface {
	GetTenantByID(ctx context.Context, tenantID int64) (*model.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error)
}

type tenantRepo struct {
	db *sql.DB
}

// NewTenantRepo creates a new TenantRepository.
func NewTenantRepo(db *sql.DB) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) GetTenantByID(ctx context.Context, tenantID int64) (*model.Tenant, error) {
	const q = `
		SELECT id, name, slug, plan, created_at
		FROM tenants
		WHERE id = $1
	`
	var t model.Tenant
	err := r.db.QueryRowContext(ctx, q, tenantID).Scan(&t.ID, &t.Name, &t.Slug, &t.Plan, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch tenant %d: %w", tenantID, err)
	}
	return &t, nil
}

func (r *tenantRepo) GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	const q = `
		SELECT id, name, slug, plan, created_at
		FROM tenants
		WHERE slug = $1
	`
	var t model.Tenant
	err := r.db.QueryRowContext(ctx, q, slug).Scan(&t.ID, &t.Name, &t.Slug, &t.Plan, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch tenant %q: %w", slug, err)
	}
	return &t, nil
}
