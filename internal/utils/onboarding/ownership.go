package onboarding

import (
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	hundred            = decimal.NewFromInt(100)
	ownershipTolerance = decimal.RequireFromString("0.01")
)

// OwnershipResult is the outcome of summing shareholder percentages.
type OwnershipResult struct {
	Valid bool            `json:"valid"`
	Total decimal.Decimal `json:"total"`
}

// CheckOwnership sums ownership percentages; the list is valid iff |sum - 100| <= 0.01.
func CheckOwnership(shareholders []domain.Shareholder) OwnershipResult {
	total := decimal.Zero
	for _, sh := range shareholders {
		total = total.Add(sh.OwnershipPercentage)
	}
	return OwnershipResult{
		Valid: total.Sub(hundred).Abs().LessThanOrEqual(ownershipTolerance),
		Total: total,
	}
}
