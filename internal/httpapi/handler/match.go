package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vntrieu/mafia/internal/auth"
	"github.com/vntrieu/mafia/internal/games"
)

// MatchEngine is the match façade used by the handlers. Implemented by *games.Engine.
type MatchEngine interface {
	Create(ctx context.Context, hostID int64) (*games.Match, error)
	GetState(ctx context.Context, id string) (*games.Match, error)
	CheckStart(ctx context.Context, id string) error
	Targets(ctx context.Context, id string, step string) ([]string, error)
	ApplyMove(ctx context.Context, id string, mv games.Move) games.ApplyMoveResult
	Delete(ctx context.Context, id string) error
}

// Publisher forwards committed moves to spectators. Implemented by *websocket.EventHandler.
type Publisher interface {
	Publish(matchID string, result games.ApplyMoveResult)
	PublishDeleted(matchID string)
}

// SpectatorGuard holds spectator passwords. Implemented by *websocket.WSHandler.
type SpectatorGuard interface {
	Protect(matchID, password string) error
	Forget(matchID string)
	Authorize(matchID, password string) error
}

// CreateMatchRequest is the body for POST /api/matches.
type CreateMatchRequest struct {
	HostID            int64  `json:"host_id"`
	SpectatorPassword string `json:"spectator_password,omitempty"`
}

// CreateMatchResponse carries the new match and the host token that every
// mutating route requires.
type CreateMatchResponse struct {
	Match     games.MatchView `json:"match"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	// SpectatorURL is the websocket path of the spectator feed.
	SpectatorURL string `json:"spectator_url"`
}

// MoveResponse is returned by every operation that changes a match.
type MoveResponse struct {
	State  games.MatchView        `json:"state"`
	Events []games.BroadcastEvent `json:"events"`
	NewLog []string               `json:"new_log"`
}

// CheckStartResponse is returned by GET /api/matches/{id}/check-start.
type CheckStartResponse struct {
	CanStart bool   `json:"can_start"`
	Reason   string `json:"reason,omitempty"`
}

// TargetsResponse is returned by GET /api/matches/{id}/targets/{step}.
type TargetsResponse struct {
	Step    string   `json:"step"`
	Targets []string `json:"targets"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type targetRequest struct {
	Target string `json:"target"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type countRequest struct {
	Count *int `json:"count"`
}

type choiceRequest struct {
	Target  string `json:"target,omitempty"`
	Consent *bool  `json:"consent,omitempty"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// MatchHandler serves the host API.
type MatchHandler struct {
	engine      MatchEngine
	feed        Publisher
	guard       SpectatorGuard
	tokenSecret []byte
	tokenTTL    time.Duration
	logger      *slog.Logger
}

// NewMatchHandler creates a MatchHandler. feed and guard may be nil.
func NewMatchHandler(engine MatchEngine, feed Publisher, guard SpectatorGuard, tokenSecret []byte, logger *slog.Logger) *MatchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchHandler{
		engine:      engine,
		feed:        feed,
		guard:       guard,
		tokenSecret: tokenSecret,
		tokenTTL:    auth.DefaultTokenExpiry,
		logger:      logger.With("tag", "http"),
	}
}

// ListRoles handles GET /api/roles.
//
// @Summary      Role catalog
// @Description  Selectable roles in display order with alignment and how many seats each may take.
// @Tags         roles
// @Produce      json
// @Success      200  {array}   games.RoleInfo
// @Router       /api/roles [get]
func (h *MatchHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.logger, http.StatusOK, games.RoleCatalog())
}

// CreateMatch handles POST /api/matches.
//
// @Summary      Create match
// @Description  Create a match in the lobby with the default role distribution. The returned token authorizes every other host route of this match.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        body  body      CreateMatchRequest  true  "Host and optional spectator password"
// @Success      201   {object}  CreateMatchResponse
// @Failure      400   {object}  errorResponse  "Missing host_id or bad body"
// @Failure      429   {string}  string         "Rate limit exceeded"
// @Router       /api/matches [post]
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var body CreateMatchRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if body.HostID <= 0 {
		writeError(w, r, h.logger, fmt.Errorf("%w: host_id is required", games.ErrValidation))
		return
	}

	m, err := h.engine.Create(r.Context(), body.HostID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	token, expiresAt, err := auth.GenerateToken(m.ID, body.HostID, h.tokenSecret, h.tokenTTL)
	if err != nil {
		h.rollback(r, m.ID)
		writeError(w, r, h.logger, fmt.Errorf("issue host token: %w", err))
		return
	}
	if body.SpectatorPassword != "" && h.guard != nil {
		if err := h.guard.Protect(m.ID, body.SpectatorPassword); err != nil {
			h.rollback(r, m.ID)
			writeError(w, r, h.logger, fmt.Errorf("protect spectator feed: %w", err))
			return
		}
	}

	h.logger.Info("match created", "request_id", requestID(r), "match", m.ID, "host", body.HostID,
		"protected", body.SpectatorPassword != "")
	writeJSON(w, r, h.logger, http.StatusCreated, CreateMatchResponse{
		Match:        m.View(false),
		Token:        token,
		ExpiresAt:    expiresAt,
		SpectatorURL: "/ws/matches/" + m.ID,
	})
}

func (h *MatchHandler) rollback(r *http.Request, id string) {
	if err := h.engine.Delete(r.Context(), id); err != nil {
		h.logger.Error("rollback create", "request_id", requestID(r), "match", id, "err", err)
	}
}

// GetMatch handles GET /api/matches/{id}.
//
// @Summary      Host view
// @Description  Full host view: roles, titles, binding progress, the active night step with its legal targets and the last log lines. Pass log=full for the whole log.
// @Tags         matches
// @Produce      json
// @Param        id   path      string  true   "Match ID"
// @Param        log  query     string  false  "full to include the whole log"
// @Success      200  {object}  games.MatchView
// @Failure      401  {string}  string         "Missing or invalid host token"
// @Failure      404  {object}  errorResponse  "Match not found"
// @Security     BearerAuth
// @Router       /api/matches/{id} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.engine.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, h.logger, http.StatusOK, m.View(r.URL.Query().Get("log") == "full"))
}

// PublicState handles GET /api/matches/{id}/public.
//
// @Summary      Spectator view
// @Description  What spectators see: living players' roles, the night plan and the host log are withheld. Protected matches need the spectator password in the X-Spectator-Password header.
// @Tags         spectators
// @Produce      json
// @Param        id                    path    string  true   "Match ID"
// @Param        X-Spectator-Password  header  string  false  "Spectator password"
// @Success      200  {object}  games.MatchView
// @Failure      401  {string}  string  "Wrong spectator password or unknown match"
// @Router       /api/matches/{id}/public [get]
func (h *MatchHandler) PublicState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.guard != nil {
		if err := h.guard.Authorize(id, r.Header.Get("X-Spectator-Password")); err != nil {
			if !errors.Is(err, auth.ErrWrongPassword) {
				h.logger.Error("check spectator password", "request_id", requestID(r), "match", id, "err", err)
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}
	m, err := h.engine.GetState(r.Context(), id)
	if errors.Is(err, games.ErrNotFound) {
		// Same answer as a wrong password, so unknown ids are not told apart
		// from protected matches.
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, h.logger, http.StatusOK, m.PublicView())
}

// CheckStart handles GET /api/matches/{id}/check-start.
//
// @Summary      Pre-check start
// @Description  Reports whether the roster and role distribution allow starting, and why not.
// @Tags         matches
// @Produce      json
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  CheckStartResponse
// @Failure      404  {object}  errorResponse  "Match not found"
// @Security     BearerAuth
// @Router       /api/matches/{id}/check-start [get]
func (h *MatchHandler) CheckStart(w http.ResponseWriter, r *http.Request) {
	err := h.engine.CheckStart(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, r, h.logger, http.StatusOK, CheckStartResponse{CanStart: true})
	case errors.Is(err, games.ErrValidation):
		writeJSON(w, r, h.logger, http.StatusOK, CheckStartResponse{Reason: err.Error()})
	default:
		writeError(w, r, h.logger, err)
	}
}

// Targets handles GET /api/matches/{id}/targets/{step}.
//
// @Summary      Legal night targets
// @Description  Living players the given step of the current night may choose.
// @Tags         night
// @Produce      json
// @Param        id    path      string  true  "Match ID"
// @Param        step  path      string  true  "Night step, e.g. mafia_kill"
// @Success      200   {object}  TargetsResponse
// @Failure      404   {object}  errorResponse  "Match or step not found"
// @Failure      409   {object}  errorResponse  "Not night, or step not planned"
// @Security     BearerAuth
// @Router       /api/matches/{id}/targets/{step} [get]
func (h *MatchHandler) Targets(w http.ResponseWriter, r *http.Request) {
	step := chi.URLParam(r, "step")
	targets, err := h.engine.Targets(r.Context(), chi.URLParam(r, "id"), step)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if targets == nil {
		targets = []string{}
	}
	writeJSON(w, r, h.logger, http.StatusOK, TargetsResponse{Step: step, Targets: targets})
}

// ApplyMove handles POST /api/matches/{id}/moves.
//
// @Summary      Apply a move
// @Description  Generic entry point taking any host action; the dedicated routes below are shorthands for it.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        id    path      string      true  "Match ID"
// @Param        body  body      games.Move  true  "Move"
// @Success      200   {object}  MoveResponse
// @Failure      400   {object}  errorResponse  "Invalid move"
// @Failure      404   {object}  errorResponse  "Match or player not found"
// @Failure      409   {object}  errorResponse  "Action not allowed in the current stage"
// @Failure      422   {object}  errorResponse  "Illegal target"
// @Security     BearerAuth
// @Router       /api/matches/{id}/moves [post]
func (h *MatchHandler) ApplyMove(w http.ResponseWriter, r *http.Request) {
	var mv games.Move
	if err := decodeBody(r, &mv); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.apply(w, r, mv)
}

// apply runs a move, publishes it to spectators and answers with the new host view.
func (h *MatchHandler) apply(w http.ResponseWriter, r *http.Request, mv games.Move) {
	id := chi.URLParam(r, "id")
	res := h.engine.ApplyMove(r.Context(), id, mv)
	if res.Error != nil {
		writeError(w, r, h.logger, res.Error)
		return
	}
	if h.feed != nil {
		h.feed.Publish(id, res)
	}
	events := res.Events
	if events == nil {
		events = []games.BroadcastEvent{}
	}
	writeJSON(w, r, h.logger, http.StatusOK, MoveResponse{
		State:  res.State.View(false),
		Events: events,
		NewLog: res.NewLog,
	})
}

// DeleteMatch handles DELETE /api/matches/{id}.
//
// @Summary      Delete match
// @Description  Removes the match. A match deleted mid-game is archived as abandoned; spectators are disconnected.
// @Tags         matches
// @Param        id   path  string  true  "Match ID"
// @Success      204
// @Failure      404  {object}  errorResponse  "Match not found"
// @Security     BearerAuth
// @Router       /api/matches/{id} [delete]
func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.engine.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if h.guard != nil {
		h.guard.Forget(id)
	}
	if h.feed != nil {
		h.feed.PublishDeleted(id)
	}
	h.logger.Info("match deleted", "request_id", requestID(r), "match", id)
	w.WriteHeader(http.StatusNoContent)
}

// SetSpectatorPassword handles PUT /api/matches/{id}/spectator-password.
//
// @Summary      Set spectator password
// @Description  Sets or, with an empty password, clears the password needed to watch the match.
// @Tags         spectators
// @Accept       json
// @Param        id    path  string           true  "Match ID"
// @Param        body  body  passwordRequest  true  "Password"
// @Success      204
// @Failure      404  {object}  errorResponse  "Match not found"
// @Security     BearerAuth
// @Router       /api/matches/{id}/spectator-password [put]
func (h *MatchHandler) SetSpectatorPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body passwordRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if _, err := h.engine.GetState(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if h.guard == nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: spectator feed is disabled", games.ErrValidation))
		return
	}
	if err := h.guard.Protect(id, body.Password); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
