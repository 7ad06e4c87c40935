package domain

// UsageStats is the aggregate view served to administrators.
type UsageStats struct {
	TotalUsers        int64
	UsersByPlan       map[UserPlan]int64
	TotalConversions  int64
	RecentConversions int64 // last 7 days
	TotalCharacters   int64
	ConversionsByTier map[VoiceTier]int64
	SignupCountries   map[string]int64
}
