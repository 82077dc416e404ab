package model

// StripeCustomer is a read-only record assembled from the Stripe API:
// one customer plus the MRR of their active subscriptions.
type StripeCustomer struct {
	StripeCustomerID string  `json:"stripe_customer_id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	MRR              float64 `json:"mrr"`
	Plan             string  `json:"plan"`
}

// StripeCustomerMatch links a Stripe customer to an internal customer of a
// tenant, when one could be found. Informational only; reconciliation never
// writes back into the customer store.
type StripeCustomerMatch struct {
	StripeCustomer
	MatchedCustomerID         *int64  `json:"matched_customer_id,omitempty"`
	MatchedCustomerExternalID *string `json:"matched_customer_external_id,omitempty"`
}
