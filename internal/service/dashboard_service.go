package service

import (
	"context"
	"fmt"

	"app/internal/model"
	"app/internal/repository"
)

// DashboardSummary aggregates the latest prediction per customer for a
// tenant. LevelCounts and TrendCounts are the data series the presentation
// layer charts from.
type DashboardSummary struct {
	TotalRevenueAtRisk float64                        `json:"total_revenue_at_risk"`
	HasEarlyWarnings   bool                           `json:"has_early_warnings"`
	LevelCounts        map[string]int                 `json:"level_counts"`
	TrendCounts        map[string]int                 `json:"trend_counts"`
	Predictions        []model.PredictionWithCustomer `json:"predictions"`
}

// DashboardService is a read-only projection over prediction history.
type DashboardService interface {
	// Summary aggregates the latest snapshot per customer, ordered by risk
	// score descending.
	Summary(ctx context.Context, tenantID int64) (*DashboardSummary, error)
	// HighRisk lists the latest high-level snapshots ordered by revenue at
	// risk descending.
	HighRisk(ctx context.Context, tenantID int64) ([]model.PredictionWithCustomer, error)
}

type dashboardService struct {
	predictionRepo repository.PredictionRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(predictionRepo repository.PredictionRepository) DashboardService {
	return &dashboardService{predictionRepo: predictionRepo}
}

func (s *dashboardService) Summary(ctx context.Context, tenantID int64) (*DashboardSummary, error) {
	predictions, err := s.predictionRepo.ListLatestByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load latest predictions for tenant %d: %w", tenantID, err)
	}

	summary := &DashboardSummary{
		LevelCounts: map[string]int{
			model.RiskLevelLow:    0,
			model.RiskLevelMedium: 0,
			model.RiskLevelHigh:   0,
		},
		TrendCounts: map[string]int{
			model.TrendNew:       0,
			model.TrendImproving: 0,
			model.TrendStable:    0,
			model.TrendWorsening: 0,
		},
		Predictions: predictions,
	}
	for _, p := range predictions {
		summary.TotalRevenueAtRisk += p.RevenueAtRisk
		if p.EarlyWarning {
			summary.HasEarlyWarnings = true
		}
		summary.LevelCounts[p.RiskLevel]++
		summary.TrendCounts[p.RiskTrend]++
	}
	return summary, nil
}

func (s *dashboardService) HighRisk(ctx context.Context, tenantID int64) ([]model.PredictionWithCustomer, error) {
	predictions, err := s.predictionRepo.ListHighRisk(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load high risk predictions for tenant %d: %w", tenantID, err)
	}
	return predictions, nil
}
