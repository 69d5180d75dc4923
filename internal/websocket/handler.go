package websocket

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vntrieu/mafia/internal/games"
)

// StateSource loads the current state of a match. Implemented by *games.Engine.
type StateSource interface {
	GetState(ctx context.Context, id string) (*games.Match, error)
}

// EventHandler answers spectator requests and publishes committed moves.
// Spectators only ever see the public view and public events.
type EventHandler struct {
	hub    *Hub
	source StateSource
	logger *slog.Logger
}

// NewEventHandler creates an EventHandler and attaches it to the hub.
func NewEventHandler(hub *Hub, source StateSource, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &EventHandler{hub: hub, source: source, logger: logger.With("tag", "ws")}
	if hub != nil {
		hub.SetEventHandler(h)
	}
	return h
}

// HandleMessage processes one spectator message. Unknown or oversized
// types get an error envelope.
func (h *EventHandler) HandleMessage(ctx context.Context, client *Client, msg *ClientInMessage) {
	if msg == nil {
		h.sendError(client, "", "invalid message")
		return
	}
	if len(msg.Type) > MaxClientMessageTypeLength || !ValidClientMessageTypes[msg.Type] {
		h.sendError(client, msg.CorrelationID, "unsupported message type")
		return
	}
	switch msg.Type {
	case ClientMessageTypeSyncState:
		h.handleSyncState(ctx, client, msg)
	case ClientMessageTypePing:
		h.hub.SendTo(client, &ServerEnvelope{Type: ServerTypeEvent, Event: ServerEventPong, CorrelationID: msg.CorrelationID})
	}
}

// handleSyncState sends the current public view to the requesting client only.
func (h *EventHandler) handleSyncState(ctx context.Context, client *Client, msg *ClientInMessage) {
	if h.source == nil {
		h.sendError(client, msg.CorrelationID, "sync_state not available")
		return
	}
	m, err := h.source.GetState(ctx, client.MatchID)
	if err != nil {
		if errors.Is(err, games.ErrNotFound) {
			h.sendError(client, msg.CorrelationID, "match not found")
			return
		}
		h.logger.Error("sync_state failed", "match", client.MatchID, "err", err)
		h.sendError(client, msg.CorrelationID, "failed to load state")
		return
	}
	env := StateEnvelope(m)
	env.CorrelationID = msg.CorrelationID
	h.hub.SendTo(client, env)
}

// Publish broadcasts the public events of a committed move, followed by the
// new public state.
func (h *EventHandler) Publish(matchID string, result games.ApplyMoveResult) {
	if h.hub == nil || result.Error != nil {
		return
	}
	for _, ev := range games.PublicEvents(result.Events) {
		h.hub.BroadcastEnvelope(matchID, &ServerEnvelope{Type: ServerTypeEvent, Event: ev.Event, Payload: ev.Payload})
	}
	if result.State != nil {
		h.hub.BroadcastEnvelope(matchID, StateEnvelope(result.State))
	}
}

// PublishDeleted tells spectators the match is gone and disconnects them.
func (h *EventHandler) PublishDeleted(matchID string) {
	if h.hub == nil {
		return
	}
	h.hub.BroadcastEnvelope(matchID, &ServerEnvelope{
		Type:    ServerTypeEvent,
		Event:   ServerEventMatchDeleted,
		Payload: map[string]interface{}{"match_id": matchID},
	})
	h.hub.CloseMatch(matchID)
}

// StateEnvelope wraps the public view of m.
func StateEnvelope(m *games.Match) *ServerEnvelope {
	return &ServerEnvelope{
		Type:  ServerTypeState,
		Event: ServerEventState,
		Payload: map[string]interface{}{
			"match_id": m.ID,
			"state":    m.PublicView(),
		},
	}
}

func (h *EventHandler) sendError(client *Client, correlationID, message string) {
	sendErrorToClient(client, correlationID, message)
}

func sendErrorToClient(client *Client, correlationID, message string) {
	client.hub.SendTo(client, &ServerEnvelope{
		Type:          ServerTypeError,
		CorrelationID: correlationID,
		Payload:       map[string]interface{}{"message": message},
	})
}
