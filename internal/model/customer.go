package model

import "time"

// Customer is one end customer of a tenant, imported via CSV upload.
// (tenant_id, external_id) is unique and is the upsert key.
//
// Optional fields are pointers: nil means "unknown", which is not the same
// as zero (a nil MonthlySpend is unknown spend, a zero one is a free plan).
type Customer struct {
	ID                int64      `db:"id" json:"id"`
	TenantID          int64      `db:"tenant_id" json:"tenant_id"`
	ExternalID        string     `db:"external_id" json:"external_id"`
	Email             *string    `db:"email" json:"email,omitempty"`
	SignupDate        *time.Time `db:"signup_date" json:"signup_date,omitempty"`
	LastActiveDate    *time.Time `db:"last_active_date" json:"last_active_date,omitempty"`
	SubscriptionType  *string    `db:"subscription_type" json:"subscription_type,omitempty"`
	MonthlySpend      *float64   `db:"monthly_spend" json:"monthly_spend,omitempty"`
	FeatureUsageScore *float64   `db:"feature_usage_score" json:"feature_usage_score,omitempty"`
	Churned           bool       `db:"churned" json:"churned"`
	UploadedAt        time.Time  `db:"uploaded_at" json:"uploaded_at"`
}
