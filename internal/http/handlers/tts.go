package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"golang.org/x/text/language"

	"server/internal/credits"
	"server/internal/domain"
)

type convertRequest struct {
	Text      string `json:"text" validate:"required,max=5000"`
	Language  string `json:"language"`
	VoiceTier string `json:"voice_tier" validate:"omitempty,oneof=standard premium"`
	VoiceName string `json:"voice_name"`
}

type convertResponse struct {
	AudioContent     string `json:"audio_content"`
	MIMEType         string `json:"mime_type"`
	CharacterCount   int    `json:"character_count"`
	CreditsUsed      int64  `json:"credits_used"`
	RemainingCredits int64  `json:"remaining_credits"`
}

// Convert synthesizes speech for the authenticated user, charging credits
// on success. All entitlement decisions live in the credits service; this
// handler only shapes the request and maps denial reasons to status codes.
func (a *App) Convert(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	var req convertRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "please provide text to convert")
		return
	}

	lang := req.Language
	if lang == "" {
		lang = "en-US"
	}
	tag, err := language.Parse(lang)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_language", "unrecognized language code")
		return
	}
	lang = tag.String()

	tier := domain.VoiceTier(req.VoiceTier)
	if tier == "" {
		tier = domain.VoiceTierStandard
	}

	voiceName := req.VoiceName
	if voiceName == "" {
		voiceName = lang + "-Standard-A"
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

	receipt, err := a.Credits.ChargeAndRecord(r.Context(), user, credits.ConvertRequest{
		Text:         req.Text,
		LanguageCode: lang,
		VoiceName:    voiceName,
		Tier:         tier,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTierNotPermitted):
			a.error(w, http.StatusForbidden, "tier_not_permitted", "premium voices require a premium plan; please upgrade")
		case errors.Is(err, domain.ErrInsufficientCredits):
			a.error(w, http.StatusPaymentRequired, "insufficient_credits", "not enough credits; upgrade your plan or wait for the monthly reset")
		case errors.Is(err, domain.ErrProviderFailure):
			a.error(w, http.StatusBadGateway, "provider_failure", "speech synthesis is temporarily unavailable; please retry")
		default:
			a.error(w, http.StatusInternalServerError, "internal", "failed to convert text to speech")
		}
		return
	}

	a.json(w, http.StatusOK, convertResponse{
		AudioContent:     base64.StdEncoding.EncodeToString(receipt.Audio),
		MIMEType:         receipt.MIMEType,
		CharacterCount:   receipt.CharacterCount,
		CreditsUsed:      receipt.CreditsUsed,
		RemainingCredits: receipt.RemainingCredits,
	})
}

// Voices lists the provider catalog, narrowed to the tiers the caller's plan unlocks.
func (a *App) Voices(w http.ResponseWriter, r *http.Request) {
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

	voices, err := a.Speech.ListVoices(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("list voices failed")
		a.error(w, http.StatusBadGateway, "provider_failure", "failed to retrieve available voices")
		return
	}
	allowed := credits.FilterVoices(user.Plan, voices)
	a.json(w, http.StatusOK, map[string]any{"items": allowed, "count": len(allowed)})
}

// History returns the caller's conversion ledger, newest first.
func (a *App) History(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	entries, err := a.Ledger.ListByUser(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("load history failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to retrieve history")
		return
	}

	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, map[string]any{
			"id":              e.ID,
			"text":            e.Text,
			"character_count": e.CharacterCount,
			"credits_used":    e.CreditsUsed,
			"language":        e.LanguageCode,
			"voice_tier":      e.VoiceTier,
			"voice_name":      e.VoiceName,
			"created_at":      e.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}
