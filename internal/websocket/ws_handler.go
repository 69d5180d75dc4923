package websocket

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/vntrieu/mafia/internal/auth"
	"github.com/vntrieu/mafia/internal/games"
	"github.com/vntrieu/mafia/internal/ratelimit"
)

// rateLimitKeyFromRequest returns the client IP. chi's RealIP middleware has
// already folded X-Real-IP and X-Forwarded-For into RemoteAddr.
func rateLimitKeyFromRequest(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// WSHandler upgrades spectator connections. It also holds the optional
// per-match spectator passwords.
type WSHandler struct {
	hub     *Hub
	source  StateSource
	limiter ratelimit.Limiter
	logger  *slog.Logger

	mu        sync.RWMutex
	passwords map[string][]byte
}

// NewWSHandler creates a new WSHandler. limiter may be nil.
func NewWSHandler(hub *Hub, source StateSource, limiter ratelimit.Limiter, logger *slog.Logger) *WSHandler {
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		hub:       hub,
		source:    source,
		limiter:   limiter,
		logger:    logger.With("tag", "ws"),
		passwords: make(map[string][]byte),
	}
}

// Protect requires password to watch matchID. An empty password removes
// the requirement.
func (h *WSHandler) Protect(matchID, password string) error {
	if password == "" {
		h.Forget(matchID)
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.passwords[matchID] = hash
	h.mu.Unlock()
	return nil
}

// Forget drops the password of a deleted match.
func (h *WSHandler) Forget(matchID string) {
	h.mu.Lock()
	delete(h.passwords, matchID)
	h.mu.Unlock()
}

// Protected reports whether watching matchID needs a password.
func (h *WSHandler) Protected(matchID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.passwords[matchID]
	return ok
}

// Authorize checks password against the match's spectator password. Matches
// without one accept any password.
func (h *WSHandler) Authorize(matchID, password string) error {
	h.mu.RLock()
	hash, ok := h.passwords[matchID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return auth.CheckPassword(hash, password)
}

// HandleSpectator handles GET /ws/matches/{id}. The password, when the match
// has one, is passed as the "password" query parameter. The first envelope
// on a new connection is the current public state.
func (h *WSHandler) HandleSpectator(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")
	if matchID == "" {
		http.Error(w, "match id is required", http.StatusBadRequest)
		return
	}
	key := rateLimitKeyFromRequest(r)
	if allowed, retryAfter := h.limiter.Allow("ws:" + key); !allowed {
		if retryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		}
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	if err := h.Authorize(matchID, r.URL.Query().Get("password")); err != nil {
		if !errors.Is(err, auth.ErrWrongPassword) {
			h.logger.Error("check password", "match", matchID, "err", err)
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	m, err := h.source.GetState(r.Context(), matchID)
	if err != nil {
		if errors.Is(err, games.ErrNotFound) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.logger.Error("load match", "match", matchID, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "match", matchID, "err", err)
		return
	}

	client := newClient(h.hub, conn, matchID, key)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}
	h.hub.SendTo(client, StateEnvelope(m))

	go client.writePump()
	go client.readPump()
}
