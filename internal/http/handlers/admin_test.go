package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"server/internal/domain"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminListUsers(t *testing.T) {
	repo := newFakeUserRepo(seedUser(t, "secret123"), ttsUser(domain.UserPlanPremiumPro, 1_000_000))
	app := newTestApp(repo, nil, nil, nil)

	rec := httptest.NewRecorder()
	app.AdminListUsers(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []userProfileDTO `json:"items"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
}

func TestAdminGetUser(t *testing.T) {
	user := seedUser(t, "secret123")
	app := newTestApp(newFakeUserRepo(user), nil, nil, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/admin/users/"+user.ID, nil), "id", user.ID)
	rec := httptest.NewRecorder()
	app.AdminGetUser(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp userProfileDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, user.Email, resp.Email)

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/api/admin/users/missing", nil), "id", "missing")
	rec = httptest.NewRecorder()
	app.AdminGetUser(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminUpdateUser(t *testing.T) {
	user := seedUser(t, "secret123")
	repo := newFakeUserRepo(user)
	app := newTestApp(repo, nil, nil, nil)

	body, err := json.Marshal(map[string]any{"plan": "premium_pro", "credits": 500_000, "role": "admin"})
	require.NoError(t, err)
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/admin/users/"+user.ID, bytes.NewReader(body)), "id", user.ID)
	rec := httptest.NewRecorder()
	app.AdminUpdateUser(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp userProfileDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "premium_pro", resp.Plan)
	require.Equal(t, "admin", resp.Role)
	require.Equal(t, int64(500_000), resp.Credits)
}

func TestAdminUpdateUserRejectsNegativeCredits(t *testing.T) {
	user := seedUser(t, "secret123")
	app := newTestApp(newFakeUserRepo(user), nil, nil, nil)

	body, err := json.Marshal(map[string]any{"credits": -1})
	require.NoError(t, err)
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/admin/users/"+user.ID, bytes.NewReader(body)), "id", user.ID)
	rec := httptest.NewRecorder()
	app.AdminUpdateUser(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminDeleteUser(t *testing.T) {
	user := seedUser(t, "secret123")
	repo := newFakeUserRepo(user)
	app := newTestApp(repo, nil, nil, nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/admin/users/"+user.ID, nil), "id", user.ID)
	rec := httptest.NewRecorder()
	app.AdminDeleteUser(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := repo.GetByID(req.Context(), user.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	rec = httptest.NewRecorder()
	app.AdminDeleteUser(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminStats(t *testing.T) {
	stats := &fakeStatsRepo{stats: &domain.UsageStats{
		TotalUsers:        3,
		UsersByPlan:       map[domain.UserPlan]int64{domain.UserPlanFree: 2, domain.UserPlanPremiumPro: 1},
		TotalConversions:  40,
		RecentConversions: 7,
		TotalCharacters:   12_345,
		ConversionsByTier: map[domain.VoiceTier]int64{domain.VoiceTierStandard: 30, domain.VoiceTierPremium: 10},
		SignupCountries:   map[string]int64{"ID": 2, "SG": 1},
	}}
	app := newTestApp(newFakeUserRepo(), nil, stats, nil)

	rec := httptest.NewRecorder()
	app.AdminStats(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Users struct {
			Total  int64            `json:"total"`
			ByPlan map[string]int64 `json:"by_plan"`
		} `json:"users"`
		Conversions struct {
			Total  int64            `json:"total"`
			Recent int64            `json:"recent"`
			ByTier map[string]int64 `json:"by_tier"`
		} `json:"conversions"`
		Characters      int64            `json:"characters"`
		SignupCountries map[string]int64 `json:"signup_countries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(3), resp.Users.Total)
	require.Equal(t, int64(2), resp.Users.ByPlan["free"])
	require.Equal(t, int64(40), resp.Conversions.Total)
	require.Equal(t, int64(10), resp.Conversions.ByTier["premium"])
	require.Equal(t, int64(12_345), resp.Characters)
	require.Equal(t, int64(2), resp.SignupCountries["ID"])
}
