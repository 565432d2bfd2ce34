// File: services/scheduling/deposit.go
package scheduling

import (
	"math"

	"bookly/models"
)

// DefaultDepositFraction is the partial-deposit share of the service price.
const DefaultDepositFraction = 0.20

// RoundToCent rounds half-up to the currency's minor unit.
func RoundToCent(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// ComputeDeposit returns the amount due now for a price under a policy.
// Pure; the only failure mode is a negative or non-finite price.
func ComputeDeposit(price float64, policy models.DepositPolicy) (float64, error) {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, ErrInvalidPrice
	}

	switch policy {
	case models.DepositPolicyNone:
		return 0, nil
	case models.DepositPolicyPartial:
		return RoundToCent(price * DefaultDepositFraction), nil
	case models.DepositPolicyFull:
		return price, nil
	default:
		return 0, ErrUnknownDepositPolicy
	}
}

// BuildDepositBreakdown computes the amount-due-now summary: the deposit
// on the service price plus any flat booking fee.
func BuildDepositBreakdown(price float64, policy models.DepositPolicy, bookingFee float64) (models.DepositBreakdown, error) {
	deposit, err := ComputeDeposit(price, policy)
	if err != nil {
		return models.DepositBreakdown{}, err
	}
	return models.DepositBreakdown{
		ServiceAmount: deposit,
		Fee:           bookingFee,
		Total:         RoundToCent(deposit + bookingFee),
	}, nil
}
