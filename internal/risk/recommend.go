package risk

import (
	"slices"

	"app/internal/model"
)

// Recommended actions. Like the reason strings, these are contract values.
const (
	ActionPersonalOutreach = "Offer personal outreach or onboarding call"
	ActionFeatureEducation = "Send feature education email"
	ActionRetentionOffer   = "Offer retention discount"
	ActionUpgradeOffer     = "Encourage upgrade with limited-time offer"
	ActionEngagementNudge  = "Send engagement reminder"
	ActionNone             = "No action needed"
)

// Recommend picks an action for a scored customer. The precedence list is
// evaluated top to bottom; the first match wins.
func Recommend(c *model.Customer, riskLevel string, reasons []string) string {
	if riskLevel == model.RiskLevelHigh {
		if c.MonthlySpend != nil && *c.MonthlySpend > 50 {
			return ActionPersonalOutreach
		}
		if slices.Contains(reasons, ReasonVeryLowUsage) {
			return ActionFeatureEducation
		}
		return ActionRetentionOffer
	}

	if riskLevel == model.RiskLevelMedium {
		if c.MonthlySpend != nil && *c.MonthlySpend == 0 {
			return ActionUpgradeOffer
		}
		return ActionEngagementNudge
	}

	return ActionNone
}
