package credits

import "server/internal/domain"

// PlanPolicy describes the monthly credit allowance of a billing plan and
// the voice tiers it unlocks.
type PlanPolicy struct {
	MonthlyAllowance int64
	AllowedTiers     []domain.VoiceTier
}

// PolicyFor returns the static policy for a plan. Unknown plans fall back to
// the free policy, mirroring how accounts are provisioned.
func PolicyFor(plan domain.UserPlan) PlanPolicy {
	switch plan {
	case domain.UserPlanPremiumBasic:
		return PlanPolicy{
			MonthlyAllowance: 100_000,
			AllowedTiers:     []domain.VoiceTier{domain.VoiceTierStandard, domain.VoiceTierPremium},
		}
	case domain.UserPlanPremiumPro:
		// Effectively unlimited for any realistic usage.
		return PlanPolicy{
			MonthlyAllowance: 1_000_000,
			AllowedTiers:     []domain.VoiceTier{domain.VoiceTierStandard, domain.VoiceTierPremium},
		}
	default:
		return PlanPolicy{
			MonthlyAllowance: 10_000,
			AllowedTiers:     []domain.VoiceTier{domain.VoiceTierStandard},
		}
	}
}

// AllowsTier reports whether the policy unlocks the given voice tier.
func (p PlanPolicy) AllowsTier(tier domain.VoiceTier) bool {
	for _, t := range p.AllowedTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// TierMultiplier returns the per-character credit multiplier of a voice tier.
func TierMultiplier(tier domain.VoiceTier) int64 {
	if tier == domain.VoiceTierPremium {
		return 2
	}
	return 1
}

// Cost returns the credit cost of converting characterCount characters with
// the given voice tier. Pure; holds for characterCount of zero.
func Cost(characterCount int, tier domain.VoiceTier) int64 {
	if characterCount <= 0 {
		return 0
	}
	return int64(characterCount) * TierMultiplier(tier)
}
