package dto

import "time"

// CustomerDTO is returned in API responses for customers.
type CustomerDTO struct {
	ID                int64      `json:"id"`
	ExternalID        string     `json:"external_id"`
	Email             *string    `json:"email,omitempty"`
	SignupDate        *time.Time `json:"signup_date,omitempty"`
	LastActiveDate    *time.Time `json:"last_active_date,omitempty"`
	SubscriptionType  *string    `json:"subscription_type,omitempty"`
	MonthlySpend      *float64   `json:"monthly_spend,omitempty"`
	FeatureUsageScore *float64   `json:"feature_usage_score,omitempty"`
	Churned           bool       `json:"churned"`
	UploadedAt        time.Time  `json:"uploaded_at"`
}
