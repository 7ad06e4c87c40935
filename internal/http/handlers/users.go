package handlers

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
)

type updateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
}

type upgradeRequest struct {
	Plan string `json:"plan" validate:"required,oneof=free premium_basic premium_pro"`
}

// UpdateProfile changes name, email or password. Fields left empty are kept.
func (a *App) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req updateProfileRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	user, err := a.Users.GetByID(r.Context(), userID)
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

	updated, err := a.Users.Update(r.Context(), user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			a.error(w, http.StatusConflict, "email_taken", "email already registered")
			return
		}
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("update profile failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update profile")
		return
	}
	a.json(w, http.StatusOK, profileDTO(updated))
}

// Upgrade switches the caller to a new plan with an immediate fresh-start refill.
func (a *App) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req upgradeRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid plan")
		return
	}

	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	if err := a.Credits.ApplyPlanChange(r.Context(), user, domain.UserPlan(req.Plan)); err != nil {
		if errors.Is(err, domain.ErrInvalidPlan) {
			a.error(w, http.StatusBadRequest, "invalid_plan", "invalid plan")
			return
		}
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("plan change failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to change plan")
		return
	}
	a.json(w, http.StatusOK, profileDTO(user))
}
