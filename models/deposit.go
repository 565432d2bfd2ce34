package models

// DepositPolicy selects how much of the service price is due at booking time.
type DepositPolicy string

const (
	DepositPolicyNone    DepositPolicy = "none"
	DepositPolicyPartial DepositPolicy = "partial"
	DepositPolicyFull    DepositPolicy = "full"
)

// Valid reports whether the policy is one of the known values.
func (p DepositPolicy) Valid() bool {
	switch p {
	case DepositPolicyNone, DepositPolicyPartial, DepositPolicyFull:
		return true
	}
	return false
}

// DepositBreakdown is the amount-due-now summary shown to the customer:
// the deposit on the service price, any flat booking fee, and their sum.
type DepositBreakdown struct {
	ServiceAmount float64 `json:"serviceAmount"`
	Fee           float64 `json:"fee"`
	Total         float64 `json:"total"`
}
