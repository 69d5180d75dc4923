package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vntrieu/mafia/internal/auth"
	"github.com/vntrieu/mafia/internal/games"
)

// contextKey type for request context keys (avoids collisions with other packages).
type contextKey string

// HostClaimsContextKey is the context key for verified host token claims
// (set by the RequireHost middleware).
const HostClaimsContextKey contextKey = "host_claims"

// HostClaimsFromRequest returns the host claims set by the auth middleware, or nil.
func HostClaimsFromRequest(r *http.Request) *auth.Claims {
	c, _ := r.Context().Value(HostClaimsContextKey).(*auth.Claims)
	return c
}

// requestID returns the request ID from chi's context for logging.
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// errorResponse is the JSON body of every 4xx/5xx answer.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps engine errors to HTTP statuses.
func statusFor(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, games.ErrStageMismatch):
		return http.StatusConflict, "stage_mismatch"
	case errors.Is(err, games.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, games.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, games.ErrIllegalTarget):
		return http.StatusUnprocessableEntity, "illegal_target"
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, games.ErrInvariant):
		return http.StatusInternalServerError, "invariant"
	}
	return http.StatusInternalServerError, "internal"
}

// writeError answers with the status matching err. Server-side failures are
// logged and their detail is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "request_id", requestID(r), "path", r.URL.Path, "err", err)
		if code == "internal" {
			msg = "internal server error"
		}
	}
	writeJSON(w, r, logger, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "request_id", requestID(r), "err", err)
	}
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return errors.Join(games.ErrValidation, errors.New("invalid request body: "+err.Error()))
	}
	return nil
}
