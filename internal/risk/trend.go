package risk

import (
	"time"

	"app/internal/model"
)

// trendBand is the score delta a run must exceed to count as movement.
const trendBand = 0.1

// AnalyzeTrend compares the previous run's score against the current one.
// A nil previous score means this is the customer's first prediction:
// trend "new", no early warning. Otherwise the score must move by more
// than the band in either direction to leave "stable"; only a worsening
// move raises the early-warning flag.
func AnalyzeTrend(previous *float64, current float64) (string, bool) {
	if previous == nil {
		return model.TrendNew, false
	}

	diff := current - *previous
	switch {
	case diff > trendBand:
		return model.TrendWorsening, true
	case diff < -trendBand:
		return model.TrendImproving, false
	default:
		return model.TrendStable, false
	}
}

// DaysInRisk returns whole days between a customer's first-ever prediction
// and now, or 0 when no prior prediction exists.
func DaysInRisk(firstSeen *time.Time, now time.Time) int {
	if firstSeen == nil {
		return 0
	}
	return int(now.Sub(*firstSeen).Hours() / 24)
}
