package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type countStub int

func (c countStub) Len() int { return int(c) }

type pingStub struct{ err error }

func (p pingStub) Ping(context.Context) error { return p.err }

func TestHealthz(t *testing.T) {
	tests := []struct {
		name    string
		archive Pinger
		want    string
	}{
		{"no database", nil, "disabled"},
		{"database up", pingStub{}, "ok"},
		{"database down", pingStub{err: errors.New("refused")}, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(countStub(3), tt.archive).Healthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status %d", w.Code)
			}
			var body healthResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Status != "ok" || body.Matches != 3 || body.Archive != tt.want {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}
