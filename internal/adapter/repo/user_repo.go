package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

const uniqueViolation = "23505"

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, plan, credits, credits_reset_at, signup_country, created_at, updated_at`

// Create inserts a new user row.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
INSERT INTO users (id, name, email, password_hash, role, plan, credits, credits_reset_at, signup_country)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + userColumns + `;
`
	row := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Plan,
		user.Credits,
		user.CreditsResetAt,
		user.SignupCountry,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email address.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Update writes all mutable user fields and returns the stored row.
func (r *UserRepositoryPG) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
UPDATE users
SET name = $2,
    email = $3,
    password_hash = $4,
    role = $5,
    plan = $6,
    credits = $7,
    credits_reset_at = $8,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns + `;
`
	row := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Plan,
		user.Credits,
		user.CreditsResetAt,
	)

	updated, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return updated, nil
}

// SetCredits refills the balance to a flat amount and stamps the reset time.
// Used by the monthly reset and by plan changes, never by conversion charges.
func (r *UserRepositoryPG) SetCredits(ctx context.Context, id string, credits int64, resetAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET credits = $2,
    credits_reset_at = $3,
    updated_at = NOW()
WHERE id = $1;
`, id, credits, resetAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DebitAndRecord charges entry.CreditsUsed against the owner's balance and
// appends the ledger entry, both inside one transaction. The UPDATE is
// conditional on the balance covering the charge, which serializes
// concurrent spends on the row: a losing request matches no row and the
// whole transaction rolls back with ErrInsufficientCredits.
func (r *UserRepositoryPG) DebitAndRecord(ctx context.Context, entry *domain.LedgerEntry) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
UPDATE users
SET credits = credits - $2,
    updated_at = NOW()
WHERE id = $1
  AND credits >= $2
RETURNING credits;
`, entry.UserID, entry.CreditsUsed)

	var remaining int64
	if err := row.Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No row matched: the balance fell short, or the account was
			// deleted mid-request. Tell them apart so a vanished user is
			// not reported as a billing denial.
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, entry.UserID).Scan(&exists); err != nil {
				return 0, err
			}
			if !exists {
				return 0, domain.ErrNotFound
			}
			return 0, domain.ErrInsufficientCredits
		}
		return 0, err
	}

	if err := insertLedgerEntry(ctx, tx, entry); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return remaining, nil
}

// List returns all users, newest first.
func (r *UserRepositoryPG) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Delete removes a user and the ledger entries it owns.
func (r *UserRepositoryPG) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tts_ledger WHERE user_id = $1`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit(ctx)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Plan,
		&u.Credits,
		&u.CreditsResetAt,
		&u.SignupCountry,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
