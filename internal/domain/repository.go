package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for users. The credits balance is
// written only through SetCredits (reset, plan change), Update (admin edits)
// and DebitAndRecord (conversion charge).
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	SetCredits(ctx context.Context, id string, credits int64, resetAt time.Time) error

	// DebitAndRecord decrements the owner's balance by entry.CreditsUsed and
	// appends the ledger entry in one transaction. The debit is conditional
	// on the balance covering the charge; when a concurrent spend got there
	// first the call fails with ErrInsufficientCredits and nothing is written.
	DebitAndRecord(ctx context.Context, entry *LedgerEntry) (remaining int64, err error)

	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error
}

// LedgerRepository reads the append-only conversion history.
type LedgerRepository interface {
	ListByUser(ctx context.Context, userID string) ([]LedgerEntry, error)
}

// StatsRepository aggregates usage counters for the admin dashboard.
type StatsRepository interface {
	UsageSummary(ctx context.Context) (*UsageStats, error)
}
