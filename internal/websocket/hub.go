package websocket

import (
	"context"
	"log/slog"
	"sync"
)

// Hub keeps the spectators of every match and fans envelopes out to them.
// All outbound traffic goes through one channel, so a client sees
// envelopes in the order they were queued.
type Hub struct {
	// Registered clients by match id.
	matches map[string]map[*Client]bool

	outbound   chan *BroadcastMessage
	register   chan *Client
	unregister chan *Client
	// done is closed when Run returns; later sends are dropped.
	done chan struct{}

	eventHandler *EventHandler
	logger       *slog.Logger

	mu sync.RWMutex
}

// BroadcastMessage is an envelope for the spectators of a match. When Client
// is set only that client receives it. Close disconnects every spectator of
// the match after delivery.
type BroadcastMessage struct {
	MatchID  string
	Envelope *ServerEnvelope
	Client   *Client
	Close    bool
}

// NewHub creates a new Hub. logger may be nil.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		matches:    make(map[string]map[*Client]bool),
		outbound:   make(chan *BroadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("tag", "ws"),
	}
}

// SetEventHandler sets the handler for messages read from clients.
func (h *Hub) SetEventHandler(handler *EventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.eventHandler = handler
}

func (h *Hub) handler() *EventHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.eventHandler
}

// Run is the hub's main loop. It returns when ctx is done, after closing
// every client. Run must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.matches[client.MatchID] == nil {
				h.matches[client.MatchID] = make(map[*Client]bool)
			}
			h.matches[client.MatchID][client] = true
			total := len(h.matches[client.MatchID])
			h.mu.Unlock()
			h.logger.Info("spectator registered", "match", client.MatchID, "remote", client.RemoteAddr, "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()
			h.logger.Info("spectator unregistered", "match", client.MatchID, "remote", client.RemoteAddr)

		case message := <-h.outbound:
			h.mu.Lock()
			h.deliver(message)
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for _, clients := range h.matches {
				for client := range clients {
					h.drop(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// deliver hands a message to its recipients. Callers hold h.mu.
func (h *Hub) deliver(message *BroadcastMessage) {
	clients := h.matches[message.MatchID]
	if message.Envelope != nil {
		for client := range clients {
			if message.Client != nil && client != message.Client {
				continue
			}
			select {
			case client.send <- message.Envelope:
			default:
				h.logger.Warn("spectator too slow, dropping", "match", message.MatchID, "remote", client.RemoteAddr)
				h.drop(client)
			}
		}
	}
	if message.Close {
		n := len(clients)
		for client := range clients {
			h.drop(client)
		}
		if n > 0 {
			h.logger.Info("match feed closed", "match", message.MatchID, "spectators", n)
		}
	}
}

// drop removes a client and closes its send channel. Callers hold h.mu.
func (h *Hub) drop(client *Client) {
	clients, ok := h.matches[client.MatchID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.matches, client.MatchID)
	}
}

func (h *Hub) enqueue(message *BroadcastMessage) {
	select {
	case h.outbound <- message:
	case <-h.done:
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastEnvelope sends an envelope to every spectator of a match.
func (h *Hub) BroadcastEnvelope(matchID string, envelope *ServerEnvelope) {
	h.enqueue(&BroadcastMessage{MatchID: matchID, Envelope: envelope})
}

// SendTo sends an envelope to one client. Envelopes for clients that already
// left are discarded.
func (h *Hub) SendTo(client *Client, envelope *ServerEnvelope) {
	h.enqueue(&BroadcastMessage{MatchID: client.MatchID, Envelope: envelope, Client: client})
}

// CloseMatch disconnects every spectator of a match.
func (h *Hub) CloseMatch(matchID string) {
	h.enqueue(&BroadcastMessage{MatchID: matchID, Close: true})
}

// ClientCount returns the number of spectators of a match.
func (h *Hub) ClientCount(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.matches[matchID])
}
