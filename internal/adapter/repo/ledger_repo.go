package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// LedgerRepositoryPG implements domain.LedgerRepository backed by PostgreSQL.
type LedgerRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepositoryPG.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepositoryPG {
	return &LedgerRepositoryPG{pool: pool}
}

const ledgerColumns = `id, user_id, text, character_count, credits_used, language_code, voice_tier, voice_name, created_at`

// ListByUser returns the user's conversion history, newest first.
func (r *LedgerRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+ledgerColumns+`
FROM tts_ledger
WHERE user_id = $1
ORDER BY created_at DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Text,
			&e.CharacterCount,
			&e.CreditsUsed,
			&e.LanguageCode,
			&e.VoiceTier,
			&e.VoiceName,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// insertLedgerEntry appends one entry inside the caller's transaction. The
// ledger has no UPDATE path anywhere in the codebase.
func insertLedgerEntry(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	_, err := tx.Exec(ctx, `
INSERT INTO tts_ledger (id, user_id, text, character_count, credits_used, language_code, voice_tier, voice_name, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`,
		entry.ID,
		entry.UserID,
		entry.Text,
		entry.CharacterCount,
		entry.CreditsUsed,
		entry.LanguageCode,
		entry.VoiceTier,
		entry.VoiceName,
		entry.CreatedAt,
	)
	return err
}

var _ domain.LedgerRepository = (*LedgerRepositoryPG)(nil)
