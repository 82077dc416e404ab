package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"app/internal/model"
)

// PredictionRepository stores churn prediction snapshots. The table is
// append-only: every scoring run inserts a new row per customer and the
// serial id doubles as the tie-break when created_at timestamps collide,
// so "latest" and "first" are always well defined.
type PredictionRepository interface {
	Insert(ctx context.Context, p *model.ChurnPrediction) (*model.ChurnPrediction, error)
	// LatestByCustomer returns the customer's most recent snapshot, or nil.
	LatestByCustomer(ctx context.Context, customerID int64) (*model.ChurnPrediction, error)
	// FirstByCustomer returns the customer's oldest snapshot, or nil.
	FirstByCustomer(ctx context.Context, customerID int64) (*model.ChurnPrediction, error)
	// ListLatestByTenant returns the latest snapshot per customer for the
	// tenant, joined with customer identity, ordered by risk score descending.
	ListLatestByTenant(ctx context.Context, tenantID int64) ([]model.PredictionWithCustomer, error)
	// ListHighRisk is the latest-per-customer set filtered to high risk,
	// ordered by revenue at risk descending.
	ListHighRisk(ctx context.Context, tenantID int64) ([]model.PredictionWithCustomer, error)
}

type predictionRepo struct {
	db *sql.DB
}

// NewPredictionRepo creates a new PredictionRepository.
func NewPredictionRepo(db *sql.DB) PredictionRepository {
	return &predictionRepo{db: db}
}

const predictionColumns = `id, customer_id, tenant_id, risk_score, risk_level, reasons,
	       revenue_at_risk, recommended_action, risk_trend, early_warning, days_in_risk, created_at`

func (r *predictionRepo) Insert(ctx context.Context, p *model.ChurnPrediction) (*model.ChurnPrediction, error) {
	reasons, err := json.Marshal(p.Reasons)
	if err != nil {
		return nil, fmt.Errorf("marshal reasons for customer %d: %w", p.CustomerID, err)
	}
	const q = `
		INSERT INTO churn_predictions (customer_id, tenant_id, risk_score, risk_level, reasons,
		                               revenue_at_risk, recommended_action, risk_trend, early_warning,
		                               days_in_risk, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`
	inserted := *p
	err = r.db.QueryRowContext(ctx, q,
		p.CustomerID,
		p.TenantID,
		p.RiskScore,
		p.RiskLevel,
		reasons,
		p.RevenueAtRisk,
		p.RecommendedAction,
		p.RiskTrend,
		p.EarlyWarning,
		p.DaysInRisk,
	).Scan(&inserted.ID, &inserted.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert prediction for customer %d: %w", p.CustomerID, err)
	}
	return &inserted, nil
}

func (r *predictionRepo) LatestByCustomer(ctx context.Context, customerID int64) (*model.ChurnPrediction, error) {
	return r.oneByCustomer(ctx, customerID, "DESC")
}

func (r *predictionRepo) FirstByCustomer(ctx context.Context, customerID int64) (*model.ChurnPrediction, error) {
	return r.oneByCustomer(ctx, customerID, "ASC")
}

func (r *predictionRepo) oneByCustomer(ctx context.Context, customerID int64, direction string) (*model.ChurnPrediction, error) {
	q := `
		SELECT ` + predictionColumns + `
		FROM churn_predictions
		WHERE customer_id = $1
		ORDER BY created_at ` + direction + `, id ` + direction + `
		LIMIT 1
	`
	var p model.ChurnPrediction
	var reasons []byte
	err := r.db.QueryRowContext(ctx, q, customerID).Scan(
		&p.ID,
		&p.CustomerID,
		&p.TenantID,
		&p.RiskScore,
		&p.RiskLevel,
		&reasons,
		&p.RevenueAtRisk,
		&p.RecommendedAction,
		&p.RiskTrend,
		&p.EarlyWarning,
		&p.DaysInRisk,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch prediction for customer %d: %w", customerID, err)
	}
	if err := json.Unmarshal(reasons, &p.Reasons); err != nil {
		return nil, fmt.Errorf("unmarshal reasons for prediction %d: %w", p.ID, err)
	}
	return &p, nil
}

// latestPerCustomer selects the max prediction id per customer of a tenant;
// the serial id orders snapshots totally even within one timestamp.
const latestPerCustomer = `
	SELECT MAX(id)
	FROM churn_predictions
	WHERE tenant_id = $1
	GROUP BY customer_id
`

func (r *predictionRepo) ListLatestByTenant(ctx context.Context, tenantID int64) ([]model.PredictionWithCustomer, error) {
	q := `
		SELECT p.` + joinedPredictionColumns() + `, c.external_id, c.email
		FROM churn_predictions p
		JOIN customers c ON c.id = p.customer_id
		WHERE p.id IN (` + latestPerCustomer + `)
		ORDER BY p.risk_score DESC
	`
	return r.listJoined(ctx, q, tenantID)
}

func (r *predictionRepo) ListHighRisk(ctx context.Context, tenantID int64) ([]model.PredictionWithCustomer, error) {
	q := `
		SELECT p.` + joinedPredictionColumns() + `, c.external_id, c.email
		FROM churn_predictions p
		JOIN customers c ON c.id = p.customer_id
		WHERE p.id IN (` + latestPerCustomer + `)
		  AND p.risk_level = 'high'
		ORDER BY p.revenue_at_risk DESC
	`
	return r.listJoined(ctx, q, tenantID)
}

func (r *predictionRepo) listJoined(ctx context.Context, q string, tenantID int64) ([]model.PredictionWithCustomer, error) {
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list predictions for tenant %d: %w", tenantID, err)
	}
	defer rows.Close()

	var predictions []model.PredictionWithCustomer
	for rows.Next() {
		var p model.PredictionWithCustomer
		var reasons []byte
		if err := rows.Scan(
			&p.ID,
			&p.CustomerID,
			&p.TenantID,
			&p.RiskScore,
			&p.RiskLevel,
			&reasons,
			&p.RevenueAtRisk,
			&p.RecommendedAction,
			&p.RiskTrend,
			&p.EarlyWarning,
			&p.DaysInRisk,
			&p.CreatedAt,
			&p.CustomerExternalID,
			&p.CustomerEmail,
		); err != nil {
			return nil, fmt.Errorf("scan prediction row: %w", err)
		}
		if err := json.Unmarshal(reasons, &p.Reasons); err != nil {
			return nil, fmt.Errorf("unmarshal reasons for prediction %d: %w", p.ID, err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return predictions, nil
}

func joinedPredictionColumns() string {
	return `id, p.customer_id, p.tenant_id, p.risk_score, p.risk_level, p.reasons,
	       p.revenue_at_risk, p.recommended_action, p.risk_trend, p.early_warning, p.days_in_risk, p.created_at`
}
