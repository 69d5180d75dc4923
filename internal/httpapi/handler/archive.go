package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vntrieu/mafia/internal/games"
	"github.com/vntrieu/mafia/internal/store"
)

// ArchiveReader reads archived matches. Implemented by *store.ArchiveStore.
type ArchiveReader interface {
	ListByHost(ctx context.Context, hostID int64, limit int) ([]store.ArchivedMatch, error)
	Get(ctx context.Context, archiveID int64) (*store.ArchivedMatch, error)
}

// ArchiveHandler serves a host's match history. The host is taken from the
// verified host token.
type ArchiveHandler struct {
	archive ArchiveReader
	logger  *slog.Logger
}

// NewArchiveHandler creates an ArchiveHandler.
func NewArchiveHandler(archive ArchiveReader, logger *slog.Logger) *ArchiveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveHandler{archive: archive, logger: logger.With("tag", "http")}
}

// ListArchives handles GET /api/matches/{id}/archive.
//
// @Summary      Host's archived matches
// @Description  Most recent finished or abandoned matches of the host that owns the token, newest first.
// @Tags         archive
// @Produce      json
// @Param        id     path      string  true   "Match ID the token was issued for"
// @Param        limit  query     int     false  "Max rows (default 20, max 100)"
// @Success      200    {array}   store.ArchivedMatch
// @Failure      401    {string}  string  "Missing or invalid host token"
// @Security     BearerAuth
// @Router       /api/matches/{id}/archive [get]
func (h *ArchiveHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	claims := HostClaimsFromRequest(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, h.logger, fmt.Errorf("%w: limit must be a number", games.ErrValidation))
			return
		}
		limit = n
	}
	list, err := h.archive.ListByHost(r.Context(), claims.HostID, limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []store.ArchivedMatch{}
	}
	writeJSON(w, r, h.logger, http.StatusOK, list)
}

// GetArchive handles GET /api/matches/{id}/archive/{archiveID}.
//
// @Summary      Archived match
// @Description  One archived match with its seats and the full narrated log.
// @Tags         archive
// @Produce      json
// @Param        id         path      string  true  "Match ID the token was issued for"
// @Param        archiveID  path      int     true  "Archive ID"
// @Success      200        {object}  store.ArchivedMatch
// @Failure      404        {object}  errorResponse  "Unknown archive, or owned by another host"
// @Security     BearerAuth
// @Router       /api/matches/{id}/archive/{archiveID} [get]
func (h *ArchiveHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	claims := HostClaimsFromRequest(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	archiveID, err := strconv.ParseInt(chi.URLParam(r, "archiveID"), 10, 64)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: archive id must be a number", games.ErrValidation))
		return
	}
	a, err := h.archive.Get(r.Context(), archiveID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if a.HostID != claims.HostID {
		writeError(w, r, h.logger, fmt.Errorf("archive %d: %w", archiveID, games.ErrNotFound))
		return
	}
	writeJSON(w, r, h.logger, http.StatusOK, a)
}
