package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// SessionID identifies this connection; one user can hold several.
	SessionID uuid.UUID

	// Authenticated identity, fixed at the handshake.
	UserID uuid.UUID
	Role   string

	// Buffered channel of outbound messages.
	Send chan []byte

	// rooms the client currently subscribes to. Guarded by Hub.mu.
	rooms map[uuid.UUID]bool

	// onMessage handles each inbound frame. Set by the session before the
	// pumps start.
	onMessage func(raw []byte)
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, role string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: uuid.New(),
		UserID:    userID,
		Role:      role,
		Send:      make(chan []byte, 256),
		rooms:     make(map[uuid.UUID]bool),
	}
}

// readPump pumps frames from the websocket connection into the session.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"session_id": c.SessionID,
					"error":      err.Error(),
				})
			}
			break
		}
		if c.onMessage != nil {
			c.onMessage(raw)
		}
	}
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
