package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

// handlerFunc processes one inbound event's payload.
type handlerFunc func(ctx context.Context, c *Conn, data json.RawMessage)

// Conn is one authenticated websocket connection. Identity is established
// once at upgrade time; the dispatch table mapping event name to handler is
// built per connection and never mutated afterwards.
type Conn struct {
	ws       *websocket.Conn
	userID   string
	handlers map[string]handlerFunc
	log      *slog.Logger

	// mu guards closed and the close of send. A broadcast may snapshot this
	// conn as a room member right before disconnect and deliver right after;
	// Send must see the closed flag instead of writing to a closed channel.
	mu     sync.Mutex
	closed bool
	send   chan Outbound
}

func newConn(ws *websocket.Conn, userID string, log *slog.Logger) *Conn {
	return &Conn{
		ws:     ws,
		userID: userID,
		send:   make(chan Outbound, sendBuffer),
		log:    log,
	}
}

// UserID returns the identity verified at connect time.
func (c *Conn) UserID() string { return c.userID }

// Send queues an outbound event. Drops the event when the connection is
// already shut down or the client's send buffer is full: delivery is
// best-effort and a slow client must reconcile via a pull query.
func (c *Conn) Send(event string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- Outbound{Event: event, Data: data}:
	default:
		c.log.Warn("send buffer full, dropping event", "user", c.userID, "event", event)
	}
}

// shutdown marks the connection closed and releases writePump. Idempotent;
// any Send racing or arriving after it becomes a silent drop.
func (c *Conn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump consumes inbound frames and dispatches them in arrival order.
// Returns when the connection closes or errors.
func (c *Conn) readPump(ctx context.Context) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket read error", "user", c.userID, "err", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.log.Debug("malformed socket frame", "user", c.userID, "err", err)
			continue
		}

		handler, ok := c.handlers[env.Event]
		if !ok {
			c.log.Debug("unknown socket event", "user", c.userID, "event", env.Event)
			continue
		}
		handler(ctx, c, env.Data)
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case out, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(out); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
