package websocket

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vntrieu/mafia/internal/games"
	"github.com/vntrieu/mafia/internal/ratelimit"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource serves matches from a map.
type fakeSource struct {
	mu      sync.Mutex
	matches map[string]*games.Match
}

func (f *fakeSource) GetState(_ context.Context, id string) (*games.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, games.ErrNotFound)
	}
	return m.Clone(), nil
}

func startedMatch(id string) *games.Match {
	m := games.NewMatch(id, 1)
	m.Stage = games.StageDayMenu
	m.Day = 1
	m.Players = []games.Player{
		{Name: "Ann", Role: games.RoleCivilian, Alive: true, Mayor: true},
		{Name: "Boris", Role: games.RoleBoss, Alive: true},
		{Name: "Doc", Role: games.RoleDoctor, Alive: false},
	}
	m.Log = []string{"Day 1 begins."}
	return m
}

type feed struct {
	server  *httptest.Server
	hub     *Hub
	events  *EventHandler
	handler *WSHandler
}

func newFeed(t *testing.T, limiter ratelimit.Limiter) *feed {
	t.Helper()
	source := &fakeSource{matches: map[string]*games.Match{"m1": startedMatch("m1")}}
	hub := runHub(t)
	events := NewEventHandler(hub, source, quietLogger())
	h := NewWSHandler(hub, source, limiter, quietLogger())

	r := chi.NewRouter()
	r.Get("/ws/matches/{id}", h.HandleSpectator)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &feed{server: srv, hub: hub, events: events, handler: h}
}

func (f *feed) dial(t *testing.T, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	return websocket.DefaultDialer.Dial(url, nil)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) ServerEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env ServerEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	return env
}

func TestSpectator_InitialStateIsPublic(t *testing.T) {
	f := newFeed(t, nil)
	conn, _, err := f.dial(t, "/ws/matches/m1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	env := readEnvelope(t, conn)
	if env.Type != ServerTypeState || env.Payload["match_id"] != "m1" {
		t.Fatalf("unexpected first envelope %+v", env)
	}
	state, _ := env.Payload["state"].(map[string]interface{})
	players, _ := state["players"].([]interface{})
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got %v", state["players"])
	}
	for _, p := range players {
		pm := p.(map[string]interface{})
		alive, _ := pm["alive"].(bool)
		if _, hasRole := pm["role"]; alive && hasRole {
			t.Errorf("living player's role leaked: %v", pm)
		}
	}
	if state["recent_log"] != nil || state["allowed_actions"] != nil {
		t.Error("host-only fields leaked to spectators")
	}
}

func TestSpectator_Rejections(t *testing.T) {
	f := newFeed(t, ratelimit.NewInMemory(3, time.Minute))
	if err := f.handler.Protect("m1", "secret"); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		path string
		want int
	}{
		{"/ws/matches/unknown", http.StatusUnauthorized},
		{"/ws/matches/m1", http.StatusUnauthorized},
		{"/ws/matches/m1?password=wrong", http.StatusUnauthorized},
		{"/ws/matches/m1?password=secret", http.StatusTooManyRequests},
	}
	var bodies []string
	for _, tt := range tests {
		_, resp, err := f.dial(t, tt.path)
		if err == nil {
			t.Fatalf("%s: expected handshake failure", tt.path)
		}
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			b, _ := io.ReadAll(resp.Body)
			bodies = append(bodies, string(b))
		}
		if resp == nil || resp.StatusCode != tt.want {
			got := 0
			if resp != nil {
				got = resp.StatusCode
			}
			t.Errorf("%s: status %d, want %d", tt.path, got, tt.want)
		}
	}
	// Unknown ids answer exactly like a protected match.
	for _, b := range bodies[1:] {
		if b != bodies[0] {
			t.Errorf("rejection bodies differ: %q vs %q", bodies[0], b)
		}
	}
}

func TestSpectator_PasswordAccepted(t *testing.T) {
	f := newFeed(t, nil)
	if err := f.handler.Protect("m1", "secret"); err != nil {
		t.Fatal(err)
	}
	conn, _, err := f.dial(t, "/ws/matches/m1?password=secret")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if env := readEnvelope(t, conn); env.Type != ServerTypeState {
		t.Fatalf("unexpected envelope %+v", env)
	}

	f.handler.Forget("m1")
	if f.handler.Protected("m1") {
		t.Error("password should be forgotten")
	}
}

func TestSpectator_SyncStateAndPing(t *testing.T) {
	f := newFeed(t, nil)
	conn, _, err := f.dial(t, "/ws/matches/m1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readEnvelope(t, conn)

	if err := conn.WriteJSON(ClientInMessage{Type: ClientMessageTypeSyncState, CorrelationID: "c1"}); err != nil {
		t.Fatal(err)
	}
	env := readEnvelope(t, conn)
	if env.Type != ServerTypeState || env.CorrelationID != "c1" {
		t.Fatalf("unexpected sync_state reply %+v", env)
	}

	if err := conn.WriteJSON(ClientInMessage{Type: ClientMessageTypePing, CorrelationID: "c2"}); err != nil {
		t.Fatal(err)
	}
	if env := readEnvelope(t, conn); env.Event != ServerEventPong || env.CorrelationID != "c2" {
		t.Fatalf("unexpected ping reply %+v", env)
	}

	if err := conn.WriteJSON(ClientInMessage{Type: "vote"}); err != nil {
		t.Fatal(err)
	}
	if env := readEnvelope(t, conn); env.Type != ServerTypeError {
		t.Fatalf("expected error for unsupported type, got %+v", env)
	}
}

func TestSpectator_PublishFiltersEvents(t *testing.T) {
	f := newFeed(t, nil)
	conn, _, err := f.dial(t, "/ws/matches/m1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readEnvelope(t, conn)

	f.events.Publish("m1", games.ApplyMoveResult{
		State: startedMatch("m1"),
		Events: []games.BroadcastEvent{
			{Event: games.EventRatTurned, Payload: map[string]interface{}{"name": "Rat"}},
			{Event: games.EventNightResolved, Payload: map[string]interface{}{
				"night": 1, "deaths": []string{}, "summary": []string{"secret"},
			}},
		},
	})

	env := readEnvelope(t, conn)
	if env.Event != games.EventNightResolved {
		t.Fatalf("expected night_resolved first, got %+v", env)
	}
	if _, ok := env.Payload["summary"]; ok {
		t.Error("night summary leaked")
	}
	if env := readEnvelope(t, conn); env.Type != ServerTypeState {
		t.Fatalf("expected state after events, got %+v", env)
	}
}

func TestSpectator_PublishDeletedDisconnects(t *testing.T) {
	f := newFeed(t, nil)
	conn, _, err := f.dial(t, "/ws/matches/m1")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readEnvelope(t, conn)

	f.events.PublishDeleted("m1")
	if env := readEnvelope(t, conn); env.Event != ServerEventMatchDeleted {
		t.Fatalf("expected match_deleted, got %+v", env)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection should be closed after deletion")
	}
}
