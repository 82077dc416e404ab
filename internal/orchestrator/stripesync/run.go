package stripesync

import (
	"context"
	"fmt"

	"app/internal/repository"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// Run performs one reconciliation pass for a tenant: fetch Stripe customers
// with their active-subscription MRR and report which internal customers
// they map to. Informational only; a fetch failure aborts the run and
// nothing is ever written to the store.
func Run(ctx context.Context, logger zerolog.Logger, tenantRepo repository.TenantRepository, stripeSvc *service.StripeService, tenantSlug string) error {
	tenant, err := tenantRepo.GetTenantBySlug(ctx, tenantSlug)
	if err != nil {
		return fmt.Errorf("resolve tenant %q: %w", tenantSlug, err)
	}
	if tenant == nil {
		return fmt.Errorf("tenant %q not found", tenantSlug)
	}

	records, err := stripeSvc.FetchCustomersWithMRR(ctx)
	if err != nil {
		return fmt.Errorf("fetch stripe customers: %w", err)
	}
	if len(records) == 0 {
		logger.Warn().Msg("No Stripe customers returned")
		return nil
	}

	matches, err := stripeSvc.MatchToTenantCustomers(ctx, tenant.ID, records)
	if err != nil {
		return fmt.Errorf("match stripe customers: %w", err)
	}

	matched := 0
	for _, m := range matches {
		event := logger.Info().
			Str("stripe_customer_id", m.StripeCustomerID).
			Str("name", m.Name).
			Str("email", m.Email).
			Float64("mrr", m.MRR).
			Str("plan", m.Plan)
		if m.MatchedCustomerID != nil {
			matched++
			event = event.Int64("matched_customer_id", *m.MatchedCustomerID).
				Str("matched_external_id", *m.MatchedCustomerExternalID)
		}
		event.Msg("Stripe customer")
	}
	logger.Info().
		Str("tenant", tenant.Slug).
		Int("stripe_customers", len(matches)).
		Int("matched", matched).
		Msg("Stripe reconciliation complete")
	return nil
}
