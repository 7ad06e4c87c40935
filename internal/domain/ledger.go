package domain

import "time"

// LedgerEntry is the immutable audit record of one charged conversion.
// Entries are created exactly once, together with the balance debit, and are
// never updated afterwards. They are removed only when the owning user
// account is deleted.
type LedgerEntry struct {
	ID             string
	UserID         string
	Text           string
	CharacterCount int
	CreditsUsed    int64
	LanguageCode   string
	VoiceTier      VoiceTier
	VoiceName      string
	CreatedAt      time.Time
}
