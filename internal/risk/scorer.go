package risk

import (
	"time"

	"app/internal/model"
)

// Reason strings attached to fired rules. The recommendation engine matches
// on these, so they are exact contract values, not display copy.
const (
	ReasonInactive30   = "Inactive for more than 30 days"
	ReasonInactive14   = "Inactive for more than 14 days"
	ReasonVeryLowUsage = "Very low feature usage"
	ReasonLowUsage     = "Low feature usage"
	ReasonFreePlan     = "Free plan user"
	ReasonNewUser      = "New user with early drop-off risk"
)

// unknownDays stands in for a missing date: old enough to trip the worst
// inactivity tier and too old to count as a new signup.
const unknownDays = 999

// ruleHit is the outcome of a single fired rule.
type ruleHit struct {
	weight float64
	reason string
}

// rule evaluates one signal of a customer snapshot. A nil return means the
// rule did not fire. Rules covering tiered signals (inactivity, usage)
// resolve their own tier so at most one hit per category is produced.
type rule func(c *model.Customer, now time.Time) *ruleHit

// scoringRules is evaluated in order; reasons keep this order.
var scoringRules = []rule{
	inactivityRule,
	featureUsageRule,
	freePlanRule,
	newUserRule,
}

func inactivityRule(c *model.Customer, now time.Time) *ruleHit {
	days := daysSince(c.LastActiveDate, now)
	if days > 30 {
		return &ruleHit{weight: 0.5, reason: ReasonInactive30}
	}
	if days > 14 {
		return &ruleHit{weight: 0.3, reason: ReasonInactive14}
	}
	return nil
}

func featureUsageRule(c *model.Customer, _ time.Time) *ruleHit {
	if c.FeatureUsageScore == nil {
		return nil
	}
	if *c.FeatureUsageScore < 20 {
		return &ruleHit{weight: 0.3, reason: ReasonVeryLowUsage}
	}
	if *c.FeatureUsageScore < 40 {
		return &ruleHit{weight: 0.15, reason: ReasonLowUsage}
	}
	return nil
}

func freePlanRule(c *model.Customer, _ time.Time) *ruleHit {
	if c.MonthlySpend != nil && *c.MonthlySpend == 0 {
		return &ruleHit{weight: 0.2, reason: ReasonFreePlan}
	}
	return nil
}

func newUserRule(c *model.Customer, now time.Time) *ruleHit {
	if daysSince(c.SignupDate, now) < 7 {
		return &ruleHit{weight: 0.1, reason: ReasonNewUser}
	}
	return nil
}

// Score runs the rule table over a customer snapshot and returns the capped
// risk score, its level and the reasons for every fired rule, in rule order.
// Pure and deterministic given (customer, now).
//
// The rule weights total 1.1 when every rule fires; sums above 1.0 are
// capped so scores stay in [0, 1].
func Score(c *model.Customer, now time.Time) (float64, string, []string) {
	score := 0.0
	var reasons []string

	for _, r := range scoringRules {
		if hit := r(c, now); hit != nil {
			score += hit.weight
			reasons = append(reasons, hit.reason)
		}
	}

	if score > 1.0 {
		score = 1.0
	}

	return score, Level(score), reasons
}

// Level maps a score to its risk level: >= 0.70 high, >= 0.40 medium,
// else low.
func Level(score float64) string {
	switch {
	case score >= 0.7:
		return model.RiskLevelHigh
	case score >= 0.4:
		return model.RiskLevelMedium
	default:
		return model.RiskLevelLow
	}
}

// daysSince returns whole days elapsed since d, or unknownDays when d is nil.
func daysSince(d *time.Time, now time.Time) int {
	if d == nil {
		return unknownDays
	}
	return int(now.Sub(*d).Hours() / 24)
}
