package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// MatchLister lists live matches by host. Implemented by *store.MemoryStore.
type MatchLister interface {
	ListMatches(ctx context.Context, hostID int64) ([]string, error)
}

// HostMatchesResponse is returned by GET /api/matches/{id}/host-matches.
type HostMatchesResponse struct {
	HostID  int64    `json:"host_id"`
	Matches []string `json:"matches"`
}

// HostHandler serves host-scoped lookups across matches.
type HostHandler struct {
	matches MatchLister
	logger  *slog.Logger
}

// NewHostHandler creates a HostHandler.
func NewHostHandler(matches MatchLister, logger *slog.Logger) *HostHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HostHandler{matches: matches, logger: logger.With("tag", "http")}
}

// LiveMatches handles GET /api/matches/{id}/host-matches.
//
// @Summary      Host's live matches
// @Description  IDs of every live match owned by the host of the token, oldest first.
// @Tags         matches
// @Produce      json
// @Param        id   path      string  true  "Match ID the token was issued for"
// @Success      200  {object}  HostMatchesResponse
// @Security     BearerAuth
// @Router       /api/matches/{id}/host-matches [get]
func (h *HostHandler) LiveMatches(w http.ResponseWriter, r *http.Request) {
	claims := HostClaimsFromRequest(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	ids, err := h.matches.ListMatches(r.Context(), claims.HostID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, h.logger, http.StatusOK, HostMatchesResponse{HostID: claims.HostID, Matches: ids})
}
