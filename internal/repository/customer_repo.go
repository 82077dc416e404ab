package repository

import (
	"context"
	"database/sql"
	"fmt"

	"app/internal/model"
)

// CustomerRepository defines methods for accessing per-tenant customer data.
// Every query is tenant-scoped; there is no cross-tenant read path.
type CustomerRepository interface {
	// Upsert creates or fully replaces the customer keyed by
	// (tenant_id, external_id). Fields that are nil in the input overwrite
	// existing values with NULL: each upload is the new source of truth for
	// the row, not a patch.
	Upsert(ctx context.Context, c *model.Customer) (*model.Customer, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]model.Customer, error)
	FindByEmail(ctx context.Context, tenantID int64, email string) (*model.Customer, error)
	FindByExternalID(ctx context.Context, tenantID int64, externalID string) (*model.Customer, error)
}

type customerRepo struct {
	db *sql.DB
}

// NewCustomerRepo creates a new CustomerRepository.
func NewCustomerRepo(db *sql.DB) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `id, tenant_id, external_id, email, signup_date, last_active_date,
	       subscription_type, monthly_spend, feature_usage_score, churned, uploaded_at`

func (r *customerRepo) Upsert(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	const q = `
		INSERT INTO customers (tenant_id, external_id, email, signup_date, last_active_date,
		                       subscription_type, monthly_spend, feature_usage_score, churned, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (tenant_id, external_id) DO UPDATE
		SET email = EXCLUDED.email,
			signup_date = EXCLUDED.signup_date,
			last_active_date = EXCLUDED.last_active_date,
			subscription_type = EXCLUDED.subscription_type,
			monthly_spend = EXCLUDED.monthly_spend,
			feature_usage_score = EXCLUDED.feature_usage_score,
			churned = EXCLUDED.churned,
			uploaded_at = NOW()
		RETURNING ` + customerColumns
	row := r.db.QueryRowContext(ctx, q,
		c.TenantID,
		c.ExternalID,
		c.Email,
		c.SignupDate,
		c.LastActiveDate,
		c.SubscriptionType,
		c.MonthlySpend,
		c.FeatureUsageScore,
		c.Churned,
	)
	upserted, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("upsert customer %q for tenant %d: %w", c.ExternalID, c.TenantID, err)
	}
	return upserted, nil
}

func (r *customerRepo) ListByTenant(ctx context.Context, tenantID int64) ([]model.Customer, error) {
	const q = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE tenant_id = $1
		ORDER BY external_id
	`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list customers for tenant %d: %w", tenantID, err)
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return customers, nil
}

func (r *customerRepo) FindByEmail(ctx context.Context, tenantID int64, email string) (*model.Customer, error) {
	const q = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE tenant_id = $1 AND LOWER(email) = LOWER($2)
		LIMIT 1
	`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, q, tenantID, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find customer by email for tenant %d: %w", tenantID, err)
	}
	return c, nil
}

func (r *customerRepo) FindByExternalID(ctx context.Context, tenantID int64, externalID string) (*model.Customer, error) {
	const q = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE tenant_id = $1 AND LOWER(external_id) = LOWER($2)
		LIMIT 1
	`
	c, err := scanCustomer(r.db.QueryRowContext(ctx, q, tenantID, externalID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find customer by external id for tenant %d: %w", tenantID, err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*model.Customer, error) {
	var c model.Customer
	if err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.ExternalID,
		&c.Email,
		&c.SignupDate,
		&c.LastActiveDate,
		&c.SubscriptionType,
		&c.MonthlySpend,
		&c.FeatureUsageScore,
		&c.Churned,
		&c.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
