package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// UserPlan enumerates billing plans, ordered by entitlement breadth.
type UserPlan string

const (
	UserPlanFree         UserPlan = "free"
	UserPlanPremiumBasic UserPlan = "premium_basic"
	UserPlanPremiumPro   UserPlan = "premium_pro"
)

// Valid reports whether the plan is one of the known billing plans.
func (p UserPlan) Valid() bool {
	switch p {
	case UserPlanFree, UserPlanPremiumBasic, UserPlanPremiumPro:
		return true
	}
	return false
}

// VoiceTier classifies synthesis voices by quality and credit multiplier.
type VoiceTier string

const (
	VoiceTierStandard VoiceTier = "standard"
	VoiceTierPremium  VoiceTier = "premium"
)

// Valid reports whether the tier is a known voice tier.
func (t VoiceTier) Valid() bool {
	return t == VoiceTierStandard || t == VoiceTierPremium
}

// User represents an authenticated account within the platform.
//
// Credits is the remaining allowance for the current calendar month. It is
// mutated only by the conversion debit and the monthly reset; CreditsResetAt
// records when the balance was last refilled.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           UserRole
	Plan           UserPlan
	Credits        int64
	CreditsResetAt time.Time
	SignupCountry  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// IsFree reports whether the user is on the free plan.
func (u User) IsFree() bool {
	return u.Plan == UserPlanFree
}
