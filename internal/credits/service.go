// Package credits implements the entitlement and credit ledger that gates
// every conversion request: cost computation, plan entitlement checks, the
// atomic debit-and-record transaction and the lazy monthly reset.
package credits

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/providers/speech"
)

// Service owns all mutation of user credit balances. No other code path
// writes the balance field.
type Service struct {
	users  domain.UserRepository
	synth  speech.Synthesizer
	logger zerolog.Logger
	now    func() time.Time
}

// NewService constructs the credit service.
func NewService(users domain.UserRepository, synth speech.Synthesizer, logger zerolog.Logger) *Service {
	return &Service{users: users, synth: synth, logger: logger, now: time.Now}
}

// ConvertRequest is one text-to-speech conversion to be charged.
type ConvertRequest struct {
	Text         string
	LanguageCode string
	VoiceName    string
	Tier         domain.VoiceTier
}

// Receipt is returned for a successfully charged conversion.
type Receipt struct {
	Audio            []byte
	MIMEType         string
	CharacterCount   int
	CreditsUsed      int64
	RemainingCredits int64
}

// Authorize checks plan entitlement and balance for a prospective charge.
// The tier gate is evaluated before the balance so callers can distinguish
// "upgrade to unlock this tier" from "upgrade to afford this".
func Authorize(user *domain.User, tier domain.VoiceTier, cost int64) error {
	if !PolicyFor(user.Plan).AllowsTier(tier) {
		return domain.ErrTierNotPermitted
	}
	if user.Credits < cost {
		return domain.ErrInsufficientCredits
	}
	return nil
}

// ChargeAndRecord runs one conversion end to end: it computes the cost,
// authorizes it, invokes the synthesis provider and, only after the provider
// succeeded, debits the balance and appends the ledger entry in a single
// transaction. Denials and provider failures leave balance and ledger
// untouched; the user is never charged for audio that was not produced.
//
// If persistence fails after provider success the charge is abandoned:
// the transaction wrote neither the debit nor the entry, and the error is
// returned. A missed charge is preferred over any risk of a double charge.
func (s *Service) ChargeAndRecord(ctx context.Context, user *domain.User, req ConvertRequest) (*Receipt, error) {
	count := utf8.RuneCountInString(req.Text)
	cost := Cost(count, req.Tier)

	if err := Authorize(user, req.Tier, cost); err != nil {
		return nil, err
	}

	result, err := s.synth.Synthesize(ctx, speech.SynthesisRequest{
		Text:         req.Text,
		LanguageCode: req.LanguageCode,
		VoiceName:    req.VoiceName,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("speech synthesis failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	entry := &domain.LedgerEntry{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Text:           req.Text,
		CharacterCount: count,
		CreditsUsed:    cost,
		LanguageCode:   req.LanguageCode,
		VoiceTier:      req.Tier,
		VoiceName:      req.VoiceName,
		CreatedAt:      s.now().UTC(),
	}

	remaining, err := s.users.DebitAndRecord(ctx, entry)
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientCredits) {
			s.logger.Error().Err(err).Str("user_id", user.ID).Int64("cost", cost).Msg("charge not persisted after synthesis")
		}
		return nil, err
	}
	user.Credits = remaining

	return &Receipt{
		Audio:            result.Audio,
		MIMEType:         result.MIMEType,
		CharacterCount:   count,
		CreditsUsed:      cost,
		RemainingCredits: remaining,
	}, nil
}

// ResetIfDue refills the balance when the calendar month has rolled over
// since the last refill. The reset is lazy: it runs on login, profile reads
// and before conversions rather than on a schedule. It always sets the flat
// plan allowance, so unspent credit never accumulates across months.
func (s *Service) ResetIfDue(ctx context.Context, user *domain.User) (bool, error) {
	now := s.now().UTC()
	if samePeriod(user.CreditsResetAt, now) {
		return false, nil
	}
	allowance := PolicyFor(user.Plan).MonthlyAllowance
	if err := s.users.SetCredits(ctx, user.ID, allowance, now); err != nil {
		return false, err
	}
	user.Credits = allowance
	user.CreditsResetAt = now
	return true, nil
}

// ApplyPlanChange switches the user to a new plan and immediately sets the
// balance to the new allowance, marking the current period as reset.
// Changing plans is a fresh start in either direction: the previous balance
// is discarded, not carried over.
func (s *Service) ApplyPlanChange(ctx context.Context, user *domain.User, plan domain.UserPlan) error {
	if !plan.Valid() {
		return domain.ErrInvalidPlan
	}
	now := s.now().UTC()
	user.Plan = plan
	user.Credits = PolicyFor(plan).MonthlyAllowance
	user.CreditsResetAt = now

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return err
	}
	*user = *updated
	return nil
}

// FilterVoices narrows the provider catalog to the tiers the plan permits.
func FilterVoices(plan domain.UserPlan, voices []speech.Voice) []speech.Voice {
	policy := PolicyFor(plan)
	filtered := make([]speech.Voice, 0, len(voices))
	for _, v := range voices {
		if policy.AllowsTier(v.Tier) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// samePeriod compares calendar month and year in UTC. Stored timestamps may
// carry the database session's zone, so both sides are normalized before the
// comparison; the same instant must never read as two different periods.
func samePeriod(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month()
}
