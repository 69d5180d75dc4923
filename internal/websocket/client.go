package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Spectators only send small control messages.
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer and the spectator password.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one spectator connection.
type Client struct {
	hub *Hub

	conn *websocket.Conn

	// Buffered channel of outbound envelopes.
	send chan *ServerEnvelope

	// MatchID is the match this spectator watches.
	MatchID string

	// RemoteAddr identifies the spectator in logs.
	RemoteAddr string

	ctx context.Context
}

func newClient(hub *Hub, conn *websocket.Conn, matchID, remote string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan *ServerEnvelope, 64),
		MatchID:    matchID,
		RemoteAddr: remote,
		ctx:        context.Background(),
	}
}

// readPump reads client messages until the connection fails, then
// unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("read failed", "match", c.MatchID, "remote", c.RemoteAddr, "err", err)
			}
			break
		}

		var msg ClientInMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			sendErrorToClient(c, "", "invalid message")
			continue
		}
		if h := c.hub.handler(); h != nil {
			h.HandleMessage(c.ctx, c, &msg)
		}
	}
}

// writePump writes envelopes from the hub and keeps the connection alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(env); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// write sends one envelope as one text frame.
func (c *Client) write(env *ServerEnvelope) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		c.hub.logger.Error("encode envelope", "match", c.MatchID, "err", err)
	}
	return w.Close()
}
