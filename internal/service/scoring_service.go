package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"app/internal/model"
	"app/internal/pubsub"
	"app/internal/repository"
	"app/internal/risk"

	"github.com/rs/zerolog"
)

// ScoringService runs the churn scoring pipeline for one tenant: score each
// customer, derive a recommendation, classify the trend against the previous
// run and append one immutable prediction snapshot per customer.
type ScoringService interface {
	Rescore(ctx context.Context, tenantID int64) (*model.ScoringRunSummary, error)
}

type scoringService struct {
	customerRepo   repository.CustomerRepository
	predictionRepo repository.PredictionRepository
	publisher      pubsub.Publisher
	now            func() time.Time
	logger         zerolog.Logger
}

// NewScoringService creates a new ScoringService. publisher may be nil, in
// which case no completion event is emitted.
func NewScoringService(
	customerRepo repository.CustomerRepository,
	predictionRepo repository.PredictionRepository,
	publisher pubsub.Publisher,
	logger zerolog.Logger,
) ScoringService {
	return &scoringService{
		customerRepo:   customerRepo,
		predictionRepo: predictionRepo,
		publisher:      publisher,
		now:            time.Now,
		logger:         logger.With().Str("service", "ScoringService").Logger(),
	}
}

func (s *scoringService) Rescore(ctx context.Context, tenantID int64) (*model.ScoringRunSummary, error) {
	customers, err := s.customerRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list customers for tenant %d: %w", tenantID, err)
	}

	summary := &model.ScoringRunSummary{TenantID: tenantID}
	for i := range customers {
		// One bad customer must not abort the rest of the batch.
		if err := s.scoreCustomer(ctx, &customers[i]); err != nil {
			summary.Failed++
			s.logger.Error().Err(err).
				Int64("tenant_id", tenantID).
				Str("external_id", customers[i].ExternalID).
				Msg("Failed to score customer, continuing batch")
			continue
		}
		summary.Scored++
	}
	summary.CompletedAt = s.now()

	s.publishRunCompleted(ctx, summary)

	return summary, nil
}

func (s *scoringService) scoreCustomer(ctx context.Context, customer *model.Customer) error {
	now := s.now()

	score, level, reasons := risk.Score(customer, now)

	spend := 0.0
	if customer.MonthlySpend != nil {
		spend = *customer.MonthlySpend
	}
	revenueAtRisk := score * spend

	action := risk.Recommend(customer, level, reasons)

	last, err := s.predictionRepo.LatestByCustomer(ctx, customer.ID)
	if err != nil {
		return fmt.Errorf("fetch latest prediction: %w", err)
	}
	var prevScore *float64
	if last != nil {
		prevScore = &last.RiskScore
	}
	trend, earlyWarning := risk.AnalyzeTrend(prevScore, score)

	first, err := s.predictionRepo.FirstByCustomer(ctx, customer.ID)
	if err != nil {
		return fmt.Errorf("fetch first prediction: %w", err)
	}
	var firstSeen *time.Time
	if first != nil {
		firstSeen = &first.CreatedAt
	}
	daysInRisk := risk.DaysInRisk(firstSeen, now)

	_, err = s.predictionRepo.Insert(ctx, &model.ChurnPrediction{
		CustomerID:        customer.ID,
		TenantID:          customer.TenantID,
		RiskScore:         score,
		RiskLevel:         level,
		Reasons:           reasons,
		RevenueAtRisk:     revenueAtRisk,
		RecommendedAction: action,
		RiskTrend:         trend,
		EarlyWarning:      earlyWarning,
		DaysInRisk:        daysInRisk,
	})
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// publishRunCompleted emits a completion event for downstream consumers.
// Best effort: scoring already committed, a publish failure is only logged.
func (s *scoringService) publishRunCompleted(ctx context.Context, summary *model.ScoringRunSummary) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to marshal scoring run event")
		return
	}
	if _, err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Warn().Err(err).Int64("tenant_id", summary.TenantID).Msg("Failed to publish scoring run event")
	}
}
