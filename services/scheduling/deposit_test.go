package scheduling

import (
	"errors"
	"math"
	"testing"

	"bookly/models"
)

func TestComputeDeposit(t *testing.T) {
	cases := []struct {
		name   string
		price  float64
		policy models.DepositPolicy
		want   float64
	}{
		{"none is zero", 100.00, models.DepositPolicyNone, 0},
		{"partial of round price", 100.00, models.DepositPolicyPartial, 20.00},
		{"partial rounds half-up", 149.99, models.DepositPolicyPartial, 30.00},
		{"partial of small price", 0.05, models.DepositPolicyPartial, 0.01},
		{"full is the price", 149.99, models.DepositPolicyFull, 149.99},
		{"full of zero", 0, models.DepositPolicyFull, 0},
		{"partial of ninety", 90.00, models.DepositPolicyPartial, 18.00},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeDeposit(tc.price, tc.policy)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ComputeDeposit(%v, %s) = %v, want %v", tc.price, tc.policy, got, tc.want)
			}
		})
	}
}

func TestComputeDepositInvalidPrice(t *testing.T) {
	for _, price := range []float64{-1, -0.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := ComputeDeposit(price, models.DepositPolicyPartial); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("ComputeDeposit(%v) error = %v, want ErrInvalidPrice", price, err)
		}
	}
}

func TestComputeDepositUnknownPolicy(t *testing.T) {
	if _, err := ComputeDeposit(10, models.DepositPolicy("weekly")); !errors.Is(err, ErrUnknownDepositPolicy) {
		t.Errorf("error = %v, want ErrUnknownDepositPolicy", err)
	}
}

func TestBuildDepositBreakdown(t *testing.T) {
	got, err := BuildDepositBreakdown(90.00, models.DepositPolicyPartial, 1.50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.DepositBreakdown{ServiceAmount: 18.00, Fee: 1.50, Total: 19.50}
	if got != want {
		t.Errorf("breakdown = %+v, want %+v", got, want)
	}
}
