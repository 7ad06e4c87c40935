package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// StatsRepositoryPG aggregates usage counters for the admin dashboard.
type StatsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepositoryPG.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepositoryPG {
	return &StatsRepositoryPG{pool: pool}
}

// UsageSummary collects platform-wide counts over users and the ledger.
func (r *StatsRepositoryPG) UsageSummary(ctx context.Context) (*domain.UsageStats, error) {
	stats := &domain.UsageStats{
		UsersByPlan:       make(map[domain.UserPlan]int64),
		ConversionsByTier: make(map[domain.VoiceTier]int64),
		SignupCountries:   make(map[string]int64),
	}

	row := r.pool.QueryRow(ctx, `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE plan = 'free'),
       COUNT(*) FILTER (WHERE plan = 'premium_basic'),
       COUNT(*) FILTER (WHERE plan = 'premium_pro')
FROM users;
`)
	var free, basic, pro int64
	if err := row.Scan(&stats.TotalUsers, &free, &basic, &pro); err != nil {
		return nil, err
	}
	stats.UsersByPlan[domain.UserPlanFree] = free
	stats.UsersByPlan[domain.UserPlanPremiumBasic] = basic
	stats.UsersByPlan[domain.UserPlanPremiumPro] = pro

	row = r.pool.QueryRow(ctx, `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days'),
       COALESCE(SUM(character_count), 0),
       COUNT(*) FILTER (WHERE voice_tier = 'standard'),
       COUNT(*) FILTER (WHERE voice_tier = 'premium')
FROM tts_ledger;
`)
	var standard, premium int64
	if err := row.Scan(&stats.TotalConversions, &stats.RecentConversions, &stats.TotalCharacters, &standard, &premium); err != nil {
		return nil, err
	}
	stats.ConversionsByTier[domain.VoiceTierStandard] = standard
	stats.ConversionsByTier[domain.VoiceTierPremium] = premium

	rows, err := r.pool.Query(ctx, `
SELECT signup_country, COUNT(*)
FROM users
WHERE signup_country <> ''
GROUP BY signup_country
ORDER BY COUNT(*) DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var country string
		var count int64
		if err := rows.Scan(&country, &count); err != nil {
			return nil, err
		}
		stats.SignupCountries[country] = count
	}
	return stats, rows.Err()
}

var _ domain.StatsRepository = (*StatsRepositoryPG)(nil)
