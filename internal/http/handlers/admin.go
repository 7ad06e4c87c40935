package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
)

type adminUpdateUserRequest struct {
	Name     string `json:"name" validate:"omitempty,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
	Plan     string `json:"plan" validate:"omitempty,oneof=free premium_basic premium_pro"`
	Credits  *int64 `json:"credits" validate:"omitempty"`
}

// AdminListUsers returns all accounts, newest first.
func (a *App) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.Users.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("list users failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list users")
		return
	}
	items := make([]userProfileDTO, 0, len(users))
	for i := range users {
		items = append(items, profileDTO(&users[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// AdminGetUser returns one account by id.
func (a *App) AdminGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.Users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	a.json(w, http.StatusOK, profileDTO(user))
}

// AdminUpdateUser edits account fields, including role, plan and a direct
// credits override. Fields left empty are kept.
func (a *App) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req adminUpdateUserRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	user, err := a.Users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to process password")
			return
		}
		user.PasswordHash = string(hash)
	}
	if req.Role != "" {
		user.Role = domain.UserRole(req.Role)
	}
	if req.Plan != "" {
		user.Plan = domain.UserPlan(req.Plan)
	}
	if req.Credits != nil {
		if *req.Credits < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "credits must be non-negative")
			return
		}
		user.Credits = *req.Credits
	}

	updated, err := a.Users.Update(r.Context(), user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			a.error(w, http.StatusConflict, "email_taken", "email already registered")
			return
		}
		a.Logger.Error().Err(err).Str("user_id", user.ID).Msg("admin update user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update user")
		return
	}
	a.json(w, http.StatusOK, profileDTO(updated))
}

// AdminDeleteUser removes an account and its conversion ledger.
func (a *App) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.Logger.Error().Err(err).Msg("delete user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminStats serves the aggregate usage dashboard.
func (a *App) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Stats.UsageSummary(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("load stats failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"users": map[string]any{
			"total":   stats.TotalUsers,
			"by_plan": stats.UsersByPlan,
		},
		"conversions": map[string]any{
			"total":   stats.TotalConversions,
			"recent":  stats.RecentConversions,
			"by_tier": stats.ConversionsByTier,
		},
		"characters":       stats.TotalCharacters,
		"signup_countries": stats.SignupCountries,
	})
}
