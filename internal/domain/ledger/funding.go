package ledger

import "github.com/colorstudio/server/internal/model"

// Decide picks the funding source for one generation from a balance snapshot.
// A nil snapshot counts as an empty balance. Free generations are spent before
// paid credits.
func Decide(credit *model.UserCredit, unitCostCents int64) model.Funding {
	if credit == nil {
		return model.Funding{Kind: model.FundingDenied}
	}
	if credit.FreeGenerationsRemaining > 0 {
		return model.Funding{Kind: model.FundingFree}
	}
	if credit.PaidCreditsCents >= unitCostCents {
		return model.Funding{Kind: model.FundingPaid, CostCents: unitCostCents}
	}
	return model.Funding{Kind: model.FundingDenied}
}
