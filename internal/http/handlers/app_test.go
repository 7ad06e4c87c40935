package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"server/internal/credits"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/providers/speech"
)

// fakeUserRepo is an in-memory UserRepository for handler tests.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	trail []domain.LedgerEntry
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	cp := *user
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	r.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	cp := *user
	cp.UpdatedAt = time.Now().UTC()
	r.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeUserRepo) SetCredits(_ context.Context, id string, amount int64, resetAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Credits = amount
	u.CreditsResetAt = resetAt
	return nil
}

func (r *fakeUserRepo) DebitAndRecord(_ context.Context, entry *domain.LedgerEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[entry.UserID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if u.Credits < entry.CreditsUsed {
		return 0, domain.ErrInsufficientCredits
	}
	u.Credits -= entry.CreditsUsed
	r.trail = append(r.trail, *entry)
	return u.Credits, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeLedgerRepo struct {
	entries []domain.LedgerEntry
	err     error
}

func (r *fakeLedgerRepo) ListByUser(_ context.Context, userID string) ([]domain.LedgerEntry, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.LedgerEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeStatsRepo struct {
	stats *domain.UsageStats
	err   error
}

func (r *fakeStatsRepo) UsageSummary(context.Context) (*domain.UsageStats, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.stats, nil
}

type fakeSynth struct {
	err    error
	voices []speech.Voice
}

func (s *fakeSynth) Synthesize(context.Context, speech.SynthesisRequest) (*speech.SynthesisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &speech.SynthesisResult{Audio: []byte("mp3"), MIMEType: "audio/mpeg"}, nil
}

func (s *fakeSynth) ListVoices(context.Context) ([]speech.Voice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.voices, nil
}

func newTestApp(users *fakeUserRepo, ledger *fakeLedgerRepo, stats *fakeStatsRepo, synth *fakeSynth) *App {
	if ledger == nil {
		ledger = &fakeLedgerRepo{}
	}
	if stats == nil {
		stats = &fakeStatsRepo{stats: &domain.UsageStats{}}
	}
	if synth == nil {
		synth = &fakeSynth{}
	}
	logger := zerolog.Nop()
	return &App{
		Logger: logger,
		Config: &infra.Config{
			JWTSecret: "test-secret",
			JWTTTL:    time.Hour,
		},
		Users:    users,
		Ledger:   ledger,
		Stats:    stats,
		Credits:  credits.NewService(users, synth, logger),
		Speech:   synth,
		Validate: validator.New(),
	}
}

func asUser(r *http.Request, u *domain.User) *http.Request {
	return r.WithContext(middleware.ContextWithUser(r.Context(), u.ID, string(u.Role)))
}
