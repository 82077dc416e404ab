package service

import (
	"context"
	"fmt"
	"math"

	"app/internal/config"
	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	subscriptionpkg "github.com/stripe/stripe-go/v82/subscription"
)

// StripeService is the billing reconciliation collaborator: it assembles a
// read-only view of Stripe customers with their active-subscription MRR and
// matches them against a tenant's customers for reporting. It never feeds
// back into the customer store or scoring.
type StripeService struct {
	cfg          *config.Config
	customerRepo repository.CustomerRepository
	logger       zerolog.Logger
}

// NewStripeService initializes the Stripe key and returns the service with a
// scoped logger.
func NewStripeService(cfg *config.Config, apiKey string, customerRepo repository.CustomerRepository, logger zerolog.Logger) *StripeService {
	stripe.Key = apiKey
	lg := logger.With().Str("service", "StripeService").Logger()
	return &StripeService{cfg: cfg, customerRepo: customerRepo, logger: lg}
}

// FetchCustomersWithMRR lists Stripe customers and folds the MRR of their
// active subscriptions into one record per customer. Any upstream failure
// aborts the whole fetch; partial results are never returned.
func (s *StripeService) FetchCustomersWithMRR(ctx context.Context) ([]model.StripeCustomer, error) {
	index := make(map[string]*model.StripeCustomer)
	var order []string

	custParams := &stripe.CustomerListParams{}
	custParams.Context = ctx
	custParams.Limit = stripe.Int64(s.cfg.StripeSyncPageLimit)
	custIter := customerpkg.List(custParams)
	for custIter.Next() {
		c := custIter.Customer()
		index[c.ID] = &model.StripeCustomer{
			StripeCustomerID: c.ID,
			Name:             c.Name,
			Email:            c.Email,
		}
		order = append(order, c.ID)
	}
	if err := custIter.Err(); err != nil {
		return nil, fmt.Errorf("list stripe customers: %w", err)
	}

	subParams := &stripe.SubscriptionListParams{Status: stripe.String(string(stripe.SubscriptionStatusActive))}
	subParams.Context = ctx
	subParams.Limit = stripe.Int64(s.cfg.StripeSyncPageLimit)
	subIter := subscriptionpkg.List(subParams)
	for subIter.Next() {
		sub := subIter.Subscription()
		if sub.Customer == nil {
			continue
		}
		entry, ok := index[sub.Customer.ID]
		if !ok {
			entry = &model.StripeCustomer{StripeCustomerID: sub.Customer.ID}
			index[sub.Customer.ID] = entry
			order = append(order, sub.Customer.ID)
		}

		for _, item := range sub.Items.Data {
			if item.Price == nil {
				continue
			}
			quantity := item.Quantity
			if quantity == 0 {
				quantity = 1
			}
			entry.MRR = round2(entry.MRR + monthlyAmount(item.Price, quantity))
			if entry.Plan == "" {
				entry.Plan = planName(item.Price)
			}
		}
	}
	if err := subIter.Err(); err != nil {
		return nil, fmt.Errorf("list stripe subscriptions: %w", err)
	}

	customers := make([]model.StripeCustomer, 0, len(order))
	for _, id := range order {
		customers = append(customers, *index[id])
	}
	return customers, nil
}

// MatchToTenantCustomers links Stripe records to the tenant's customers, by
// case-insensitive email first, then case-insensitive external_id equal to
// the Stripe customer name.
func (s *StripeService) MatchToTenantCustomers(ctx context.Context, tenantID int64, records []model.StripeCustomer) ([]model.StripeCustomerMatch, error) {
	matches := make([]model.StripeCustomerMatch, 0, len(records))
	for _, record := range records {
		match := model.StripeCustomerMatch{StripeCustomer: record}

		var found *model.Customer
		var err error
		if record.Email != "" {
			found, err = s.customerRepo.FindByEmail(ctx, tenantID, record.Email)
			if err != nil {
				return nil, fmt.Errorf("match stripe customer %s by email: %w", record.StripeCustomerID, err)
			}
		}
		if found == nil && record.Name != "" {
			found, err = s.customerRepo.FindByExternalID(ctx, tenantID, record.Name)
			if err != nil {
				return nil, fmt.Errorf("match stripe customer %s by name: %w", record.StripeCustomerID, err)
			}
		}
		if found != nil {
			match.MatchedCustomerID = &found.ID
			match.MatchedCustomerExternalID = &found.ExternalID
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// monthlyAmount normalizes a price to a monthly recurring amount.
func monthlyAmount(price *stripe.Price, quantity int64) float64 {
	if price.UnitAmount == 0 {
		return 0
	}
	interval := stripe.PriceRecurringIntervalMonth
	intervalCount := int64(1)
	if price.Recurring != nil {
		if price.Recurring.Interval != "" {
			interval = price.Recurring.Interval
		}
		if price.Recurring.IntervalCount > 0 {
			intervalCount = price.Recurring.IntervalCount
		}
	}
	multiplier := intervalCount
	if interval == stripe.PriceRecurringIntervalYear {
		multiplier = intervalCount * 12
	}
	monthly := (float64(price.UnitAmount) / 100.0) / float64(multiplier)
	return round2(monthly * float64(quantity))
}

func planName(price *stripe.Price) string {
	if price.Nickname != "" {
		return price.Nickname
	}
	if price.Product != nil {
		return price.Product.ID
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
