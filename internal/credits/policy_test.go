package credits

import (
	"testing"

	"server/internal/domain"
)

func TestCost(t *testing.T) {
	tests := []struct {
		name  string
		count int
		tier  domain.VoiceTier
		want  int64
	}{
		{name: "standard", count: 5000, tier: domain.VoiceTierStandard, want: 5000},
		{name: "premium doubles", count: 3000, tier: domain.VoiceTierPremium, want: 6000},
		{name: "zero characters", count: 0, tier: domain.VoiceTierPremium, want: 0},
		{name: "negative clamps to zero", count: -10, tier: domain.VoiceTierStandard, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cost(tt.count, tt.tier); got != tt.want {
				t.Fatalf("Cost(%d, %s) = %d, want %d", tt.count, tt.tier, got, tt.want)
			}
		})
	}
}

func TestCostPremiumAlwaysDoublesStandard(t *testing.T) {
	for _, count := range []int{0, 1, 7, 100, 4999, 1_000_000} {
		standard := Cost(count, domain.VoiceTierStandard)
		premium := Cost(count, domain.VoiceTierPremium)
		if premium != 2*standard {
			t.Fatalf("count %d: premium cost %d is not double standard cost %d", count, premium, standard)
		}
	}
}

func TestTierMultiplier(t *testing.T) {
	if got := TierMultiplier(domain.VoiceTierStandard); got != 1 {
		t.Fatalf("standard multiplier = %d, want 1", got)
	}
	if got := TierMultiplier(domain.VoiceTierPremium); got != 2 {
		t.Fatalf("premium multiplier = %d, want 2", got)
	}
}

func TestPolicyForAllowances(t *testing.T) {
	tests := []struct {
		plan      domain.UserPlan
		allowance int64
		premium   bool
	}{
		{plan: domain.UserPlanFree, allowance: 10_000, premium: false},
		{plan: domain.UserPlanPremiumBasic, allowance: 100_000, premium: true},
		{plan: domain.UserPlanPremiumPro, allowance: 1_000_000, premium: true},
		{plan: domain.UserPlan("bogus"), allowance: 10_000, premium: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			policy := PolicyFor(tt.plan)
			if policy.MonthlyAllowance != tt.allowance {
				t.Fatalf("allowance = %d, want %d", policy.MonthlyAllowance, tt.allowance)
			}
			if !policy.AllowsTier(domain.VoiceTierStandard) {
				t.Fatalf("every plan must allow the standard tier")
			}
			if policy.AllowsTier(domain.VoiceTierPremium) != tt.premium {
				t.Fatalf("premium tier allowed = %v, want %v", !tt.premium, tt.premium)
			}
		})
	}
}
