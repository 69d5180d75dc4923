package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger checks a backing service. Implemented by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MatchCounter reports how many matches are live. Implemented by *store.MemoryStore.
type MatchCounter interface {
	Len() int
}

// healthResponse is the JSON body for GET /healthz.
type healthResponse struct {
	Status  string `json:"status"`
	Matches int    `json:"matches"`
	Archive string `json:"archive"`
}

// HealthHandler answers liveness checks.
type HealthHandler struct {
	matches MatchCounter
	archive Pinger
}

// NewHealthHandler creates a HealthHandler. archive is nil when no database
// is configured.
func NewHealthHandler(matches MatchCounter, archive Pinger) *HealthHandler {
	return &HealthHandler{matches: matches, archive: archive}
}

// Healthz handles GET /healthz.
//
// @Summary      Health check
// @Description  Liveness check with the live match count and archive status. The server stays up when the archive is down.
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /healthz [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Archive: "disabled"}
	if h.matches != nil {
		resp.Matches = h.matches.Len()
	}
	if h.archive != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		resp.Archive = "ok"
		if err := h.archive.Ping(ctx); err != nil {
			resp.Archive = "down"
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
