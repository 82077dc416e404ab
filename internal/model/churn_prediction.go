package model

import "time"

// Risk levels.
const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)

// Risk trends across successive scoring runs.
const (
	TrendNew       = "new"
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendWorsening = "worsening"
)

// ChurnPrediction is one immutable snapshot produced by a single scoring
// run. History is append-only: each run inserts a new row per customer and
// "latest" state is the row with the highest (created_at, id), never an
// update in place.
type ChurnPrediction struct {
	ID                int64     `db:"id" json:"id"`
	CustomerID        int64     `db:"customer_id" json:"customer_id"`
	TenantID          int64     `db:"tenant_id" json:"tenant_id"`
	RiskScore         float64   `db:"risk_score" json:"risk_score"`
	RiskLevel         string    `db:"risk_level" json:"risk_level"`
	Reasons           []string  `db:"reasons" json:"reasons"`
	RevenueAtRisk     float64   `db:"revenue_at_risk" json:"revenue_at_risk"`
	RecommendedAction string    `db:"recommended_action" json:"recommended_action"`
	RiskTrend         string    `db:"risk_trend" json:"risk_trend"`
	EarlyWarning      bool      `db:"early_warning" json:"early_warning"`
	DaysInRisk        int       `db:"days_in_risk" json:"days_in_risk"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// PredictionWithCustomer joins a prediction snapshot with the identity of
// the customer it was computed for, for tenant-facing listings.
type PredictionWithCustomer struct {
	ChurnPrediction
	CustomerExternalID string  `db:"customer_external_id" json:"customer_external_id"`
	CustomerEmail      *string `db:"customer_email" json:"customer_email,omitempty"`
}

// ScoringRunSummary reports the outcome of one tenant scoring run.
// Failed counts customers whose snapshot could not be computed or stored;
// those failures never abort the rest of the batch.
type ScoringRunSummary struct {
	TenantID    int64     `json:"tenant_id"`
	Scored      int       `json:"scored"`
	Failed      int       `json:"failed"`
	CompletedAt time.Time `json:"completed_at"`
}
