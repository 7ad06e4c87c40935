package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"server/internal/credits"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/providers/speech"
)

// App bundles the dependencies shared by all request handlers.
type App struct {
	Logger    zerolog.Logger
	Config    *infra.Config
	Users     domain.UserRepository
	Ledger    domain.LedgerRepository
	Stats     domain.StatsRepository
	Credits   *credits.Service
	Speech    speech.Synthesizer
	Validate  *validator.Validate
	GeoLookup middleware.CountryLookup
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}

// decode parses the JSON body into v and runs struct validation.
func (a *App) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return a.Validate.Struct(v)
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

type userProfileDTO struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Plan           string    `json:"plan"`
	Credits        int64     `json:"credits"`
	CreditsResetAt time.Time `json:"credits_reset_at"`
	SignupCountry  string    `json:"signup_country,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func profileDTO(u *domain.User) userProfileDTO {
	return userProfileDTO{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           string(u.Role),
		Plan:           string(u.Plan),
		Credits:        u.Credits,
		CreditsResetAt: u.CreditsResetAt,
		SignupCountry:  u.SignupCountry,
		CreatedAt:      u.CreatedAt,
	}
}
