package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JoshuaAmmons/econ-games/internal/engine"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	maxMessageSize = 4096
	sendBuffer     = 256
)

type Client struct {
	PlayerID  int64
	SessionID int64

	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	sink Sink
	done chan struct{}
}

func NewClient(playerID, sessionID int64, conn *websocket.Conn, hub *Hub, sink Sink) *Client {
	return &Client{
		PlayerID:  playerID,
		SessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		hub:       hub,
		sink:      sink,
		done:      make(chan struct{}),
	}
}

// Run registers the client, sends the reconnect snapshot, and blocks
// until the connection drops.
func (c *Client) Run() {
	go c.writePump()

	c.hub.register(c)
	c.queue([]byte(`{"type":"ready"}`))
	c.sendSnapshot()

	go c.readPump()
	<-c.done
}

func (c *Client) queue(data []byte) {
	select {
	case c.send <- data:
	default:
		wsLog().Warn("send buffer full",
			"session_id", c.SessionID, "player_id", c.PlayerID)
	}
}

func (c *Client) sendEvent(typ string, payload map[string]any) {
	data, err := json.Marshal(map[string]any{"type": typ, "payload": payload})
	if err != nil {
		wsLog().Error("marshal", "type", typ, "error", err)
		return
	}
	c.queue(data)
}

func (c *Client) sendSnapshot() {
	snap, err := c.sink.State(context.Background(), c.SessionID, c.PlayerID)
	if err != nil {
		wsLog().Error("state snapshot",
			"session_id", c.SessionID, "player_id", c.PlayerID, "error", err)
		c.sendEvent(MsgError, map[string]any{"message": "state unavailable"})
		return
	}
	c.sendEvent(MsgState, snap)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
		close(c.done)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog().Warn("read error",
					"session_id", c.SessionID, "player_id", c.PlayerID, "error", err)
			}
			return
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg []byte) {
	var in inbound
	if err := json.Unmarshal(msg, &in); err != nil {
		c.sendEvent(MsgError, map[string]any{"message": "malformed message"})
		return
	}

	switch in.Type {
	case MsgAction:
		a := engine.Action{Kind: in.Kind, Value: in.Value, Data: in.Data}
		if err := c.sink.HandleAction(context.Background(), c.SessionID, c.PlayerID, a); err != nil {
			c.sendEvent(MsgError, map[string]any{
				"message": userMessage(err),
				"kind":    in.Kind,
			})
		}
	case MsgState:
		c.sendSnapshot()
	case MsgPing:
		c.queue([]byte(`{"type":"pong"}`))
	default:
		c.sendEvent(MsgError, map[string]any{"message": "unknown message type"})
	}
}

// userMessage maps engine errors to strings safe to show a participant.
// Unexpected errors are logged server-side and reported generically.
func userMessage(err error) string {
	for _, known := range []error{
		engine.ErrWrongPhase,
		engine.ErrWrongRole,
		engine.ErrAlreadySubmitted,
		engine.ErrInvalidAction,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	wsLog().Error("action failed", "error", err)
	return "action rejected"
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
