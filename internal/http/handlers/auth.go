package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"server/internal/credits"
	"server/internal/domain"
	"server/internal/middleware"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  userProfileDTO `json:"user"`
}

// Register creates a new free-plan account with its starting allowance.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to process password")
		return
	}

	user := &domain.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           domain.UserRoleUser,
		Plan:           domain.UserPlanFree,
		Credits:        credits.PolicyFor(domain.UserPlanFree).MonthlyAllowance,
		CreditsResetAt: time.Now().UTC(),
		SignupCountry:  middleware.ResolveCountry(r, a.GeoLookup),
	}

	created, err := a.Users.Create(r.Context(), user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			a.error(w, http.StatusConflict, "email_taken", "email already registered")
			return
		}
		a.Logger.Error().Err(err).Msg("create user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create account")
		return
	}

	a.issueToken(w, http.StatusCreated, created)
}

// Login authenticates by email and password, applying the lazy monthly
// reset so the returned profile shows the current allowance.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	user, err := a.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		a.error(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		a.error(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	if _, err := a.Credits.ResetIfDue(r.Context(), user); err != nil {
		a.Logger.Error().Err(err).Str("user_id", user.ID).Msg("credit reset failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to refresh credits")
		return
	}

	a.issueToken(w, http.StatusOK, user)
}

// Me returns the authenticated user's profile.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	if _, err := a.Credits.ResetIfDue(r.Context(), user); err != nil {
		a.Logger.Error().Err(err).Str("user_id", user.ID).Msg("credit reset failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to refresh credits")
		return
	}
	a.json(w, http.StatusOK, profileDTO(user))
}

func (a *App) issueToken(w http.ResponseWriter, status int, user *domain.User) {
	token, err := middleware.SignToken(a.Config.JWTSecret, user.ID, string(user.Role), string(user.Plan), a.Config.JWTTTL)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, status, authResponse{Token: token, User: profileDTO(user)})
}
