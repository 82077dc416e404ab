package risk

import (
	"testing"
	"time"

	"app/internal/model"
)

func TestAnalyzeTrend(t *testing.T) {
	tests := []struct {
		name        string
		previous    *float64
		current     float64
		wantTrend   string
		wantWarning bool
	}{
		{"first prediction is new", nil, 0.9, model.TrendNew, false},
		{"jump past the band worsens", f64(0.3), 0.5, model.TrendWorsening, true},
		{"drop past the band improves", f64(0.5), 0.3, model.TrendImproving, false},
		{"at the band is stable", f64(0.5), 0.6, model.TrendStable, false},
		{"at the band downward is stable", f64(0.6), 0.5, model.TrendStable, false},
		{"no movement is stable", f64(0.5), 0.5, model.TrendStable, false},
		{"improving never warns", f64(1.0), 0.1, model.TrendImproving, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend, warning := AnalyzeTrend(tt.previous, tt.current)
			if trend != tt.wantTrend {
				t.Errorf("trend = %q, want %q", trend, tt.wantTrend)
			}
			if warning != tt.wantWarning {
				t.Errorf("early warning = %v, want %v", warning, tt.wantWarning)
			}
		})
	}
}

func TestDaysInRisk(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := DaysInRisk(nil, now); got != 0 {
		t.Errorf("DaysInRisk(nil) = %d, want 0", got)
	}

	first := now.AddDate(0, 0, -12)
	if got := DaysInRisk(&first, now); got != 12 {
		t.Errorf("DaysInRisk(12 days ago) = %d, want 12", got)
	}

	sameDay := now.Add(-2 * time.Hour)
	if got := DaysInRisk(&sameDay, now); got != 0 {
		t.Errorf("DaysInRisk(same day) = %d, want 0", got)
	}
}
