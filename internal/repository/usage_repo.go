package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrUploadLimitExceeded is returned when a tenant has used up their upload
// allowance for the current window.
var ErrUploadLimitExceeded = errors.New("upload_limit_exceeded")

// UsageRepository tracks tenant actions for plan-based limits.
type UsageRepository interface {
	// CheckAndRecordUpload atomically checks the tenant's upload count in
	// [start, end) and records a new upload. Returns ErrUploadLimitExceeded
	// if the limit is reached. maxUploads <= 0 means unlimited.
	CheckAndRecordUpload(ctx context.Context, tenantID int64, start, end time.Time, maxUploads int) error
	// CountUploadsInTimeRange counts CSV uploads in the given period.
	CountUploadsInTimeRange(ctx context.Context, tenantID int64, start, end time.Time) (int, error)
}

type usageRepo struct {
	db *sql.DB
}

// NewUsageRepo creates a new UsageRepository.
func NewUsageRepo(db *sql.DB) UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) CheckAndRecordUpload(ctx context.Context, tenantID int64, start, end time.Time, maxUploads int) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("starting transaction for upload check: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	var count int
	const countQ = `
		SELECT COUNT(*)
		FROM usage_events
		WHERE tenant_id = $1
		  AND event_type = 'customer_upload'
		  AND created_at >= $2
		  AND created_at < $3
	`
	if err := tx.QueryRowContext(ctx, countQ, tenantID, start, end).Scan(&count); err != nil {
		return fmt.Errorf("counting uploads for tenant %d: %w", tenantID, err)
	}
	if maxUploads > 0 && count >= maxUploads {
		return ErrUploadLimitExceeded
	}
	const insertQ = `INSERT INTO usage_events (tenant_id, event_type) VALUES ($1, 'customer_upload')`
	if _, err := tx.ExecContext(ctx, insertQ, tenantID); err != nil {
		return fmt.Errorf("recording upload event for tenant %d: %w", tenantID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upload event for tenant %d: %w", tenantID, err)
	}
	return nil
}

func (r *usageRepo) CountUploadsInTimeRange(ctx context.Context, tenantID int64, start, end time.Time) (int, error) {
	var count int
	const q = `
		SELECT COUNT(*)
		FROM usage_events
		WHERE tenant_id = $1
		  AND event_type = 'customer_upload'
		  AND created_at >= $2
		  AND created_at < $3
	`
	if err := r.db.QueryRowContext(ctx, q, tenantID, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting upload events for tenant %d: %w", tenantID, err)
	}
	return count, nil
}
