package dto

import "time"

// PredictionDTO is one prediction snapshot joined with customer identity.
type PredictionDTO struct {
	CustomerID         int64     `json:"customer_id"`
	CustomerExternalID string    `json:"customer_external_id"`
	CustomerEmail      *string   `json:"customer_email,omitempty"`
	RiskScore          float64   `json:"risk_score"`
	RiskLevel          string    `json:"risk_level"`
	Reasons            []string  `json:"reasons"`
	RevenueAtRisk      float64   `json:"revenue_at_risk"`
	RecommendedAction  string    `json:"recommended_action"`
	RiskTrend          string    `json:"risk_trend"`
	EarlyWarning       bool      `json:"early_warning"`
	DaysInRisk         int       `json:"days_in_risk"`
	CreatedAt          time.Time `json:"created_at"`
}

// DashboardResponseDTO is the churn dashboard payload: aggregates over the
// latest snapshot per customer plus the snapshots themselves.
type DashboardResponseDTO struct {
	TotalRevenueAtRisk float64         `json:"total_revenue_at_risk"`
	HasEarlyWarnings   bool            `json:"has_early_warnings"`
	LevelCounts        map[string]int  `json:"level_counts"`
	TrendCounts        map[string]int  `json:"trend_counts"`
	Predictions        []PredictionDTO `json:"predictions"`
	LastUpdated        time.Time       `json:"last_updated"`
}

// ScoringRunResponseDTO reports a completed scoring run.
type ScoringRunResponseDTO struct {
	Scored      int       `json:"scored"`
	Failed      int       `json:"failed"`
	CompletedAt time.Time `json:"completed_at"`
}
