package service

import (
	"context"
	"errors"
	"testing"

	"app/internal/model"
)

func pwc(externalID string, level, trend string, revenue float64, warning bool) model.PredictionWithCustomer {
	return model.PredictionWithCustomer{
		ChurnPrediction: model.ChurnPrediction{
			RiskLevel:     level,
			RiskTrend:     trend,
			RevenueAtRisk: revenue,
			EarlyWarning:  warning,
		},
		CustomerExternalID: externalID,
	}
}

func TestDashboardSummaryAggregates(t *testing.T) {
	repo := &fakePredictionRepo{latestByTenant: []model.PredictionWithCustomer{
		pwc("c-1", model.RiskLevelHigh, model.TrendWorsening, 100, true),
		pwc("c-2", model.RiskLevelMedium, model.TrendStable, 200, false),
		pwc("c-3", model.RiskLevelLow, model.TrendNew, 0, false),
	}}
	svc := NewDashboardService(repo)

	summary, err := svc.Summary(context.Background(), 7)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.TotalRevenueAtRisk != 300 {
		t.Errorf("total revenue at risk = %v, want 300", summary.TotalRevenueAtRisk)
	}
	if !summary.HasEarlyWarnings {
		t.Error("expected early warnings flag to be set")
	}
	if got := summary.LevelCounts[model.RiskLevelHigh]; got != 1 {
		t.Errorf("high count = %d, want 1", got)
	}
	if got := summary.TrendCounts[model.TrendStable]; got != 1 {
		t.Errorf("stable count = %d, want 1", got)
	}
	if len(summary.Predictions) != 3 {
		t.Errorf("predictions = %d, want 3", len(summary.Predictions))
	}
}

func TestDashboardSummaryEmptyTenant(t *testing.T) {
	svc := NewDashboardService(&fakePredictionRepo{})

	summary, err := svc.Summary(context.Background(), 7)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.TotalRevenueAtRisk != 0 {
		t.Errorf("total revenue at risk = %v, want 0", summary.TotalRevenueAtRisk)
	}
	if summary.HasEarlyWarnings {
		t.Error("empty tenant must not report early warnings")
	}
	// Every level and trend key is present even with no data, so chart
	// consumers never see missing series.
	for _, level := range []string{model.RiskLevelLow, model.RiskLevelMedium, model.RiskLevelHigh} {
		if _, ok := summary.LevelCounts[level]; !ok {
			t.Errorf("missing level key %q", level)
		}
	}
	for _, trend := range []string{model.TrendNew, model.TrendImproving, model.TrendStable, model.TrendWorsening} {
		if _, ok := summary.TrendCounts[trend]; !ok {
			t.Errorf("missing trend key %q", trend)
		}
	}
}

func TestDashboardHighRisk(t *testing.T) {
	repo := &fakePredictionRepo{highRisk: []model.PredictionWithCustomer{
		pwc("c-1", model.RiskLevelHigh, model.TrendWorsening, 500, true),
		pwc("c-2", model.RiskLevelHigh, model.TrendStable, 120, false),
	}}
	svc := NewDashboardService(repo)

	got, err := svc.HighRisk(context.Background(), 7)
	if err != nil {
		t.Fatalf("HighRisk failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("high risk rows = %d, want 2", len(got))
	}
	if got[0].CustomerExternalID != "c-1" {
		t.Errorf("first row = %q, want repository order preserved", got[0].CustomerExternalID)
	}
}

func TestDashboardRepositoryFailure(t *testing.T) {
	svc := NewDashboardService(&fakePredictionRepo{listErr: errors.New("db down")})

	if _, err := svc.Summary(context.Background(), 7); err == nil {
		t.Fatal("expected error from Summary")
	}
	if _, err := svc.HighRisk(context.Background(), 7); err == nil {
		t.Fatal("expected error from HighRisk")
	}
}
