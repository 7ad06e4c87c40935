package handlers

import (
	"net/http"
)

// Health reports liveness for load balancers and uptime checks. It sits
// outside the /api tree so probes bypass auth and rate limiting.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "service": "tts-api"})
}
