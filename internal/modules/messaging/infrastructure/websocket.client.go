package infrastructure

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultSendBuffer = 8
	pingInterval      = 30 * time.Second
	pongWait          = 60 * time.Second
	writeWait         = 5 * time.Second
	maxFrameSize      = 1 << 16
)

// Client envuelve una conexión WebSocket viva de un usuario de la plataforma.
// The user identity stays empty until the first auth frame is accepted; until
// then the registry does not know the connection exists.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	processor *FrameProcessor
	sessionID string

	mu       sync.RWMutex
	userID   string
	lastPong time.Time

	closeOnce  sync.Once
	closeHooks []func(*Client)
	hookMu     sync.Mutex
}

// NewClient wraps the freshly upgraded connection. buf controls the size of
// the outgoing frame buffer; zero falls back to the default.
func NewClient(conn *websocket.Conn, sessionID string, buf int, processor *FrameProcessor) *Client {
	if buf <= 0 {
		buf = defaultSendBuffer
	}
	return &Client{
		conn:      conn,
		send:      make(chan []byte, buf),
		processor: processor,
		sessionID: sessionID,
		lastPong:  time.Now().UTC(),
	}
}

// UserID returns the authenticated identity, empty before auth.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) setUser(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
}

// SessionID identifies this connection across its lifetime, independent of the user.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Authenticated reports whether the connection completed the auth handshake.
func (c *Client) Authenticated() bool {
	return c.UserID() != ""
}

// RefreshPong records that the peer answered a liveness probe.
func (c *Client) RefreshPong() {
	c.mu.Lock()
	c.lastPong = time.Now().UTC()
	c.mu.Unlock()
}

// LastPong returns the timestamp of the latest liveness reply.
func (c *Client) LastPong() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastPong
}

// Enqueue offers the frame to the write pump without blocking. It reports
// false when the buffer is saturated or the client already closed, which the
// caller must treat as a dead connection.
func (c *Client) Enqueue(data []byte) (ok bool) {
	defer func() {
		// send may be closed concurrently by Close; a dead client simply
		// refuses the frame.
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close shuts the transport down exactly once and runs the close hooks.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.invokeCloseHooks()
	})
}

// AddCloseHook registers a callback executed once when the client closes.
func (c *Client) AddCloseHook(fn func(*Client)) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.closeHooks = append(c.closeHooks, fn)
	c.hookMu.Unlock()
}

func (c *Client) invokeCloseHooks() {
	c.hookMu.Lock()
	hooks := append([]func(*Client){}, c.closeHooks...)
	c.closeHooks = nil
	c.hookMu.Unlock()

	for _, hook := range hooks {
		func(h func(*Client)) {
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("ws close hook panic", slog.Any("error", r))
				}
			}()
			h(c)
		}(hook)
	}
}

// WritePump drains the send buffer onto the wire and emits the heartbeat
// probe on a fixed cadence. Any write failure terminates the pump and closes
// the client; the read pump's exit then triggers unregistration.
func (c *Client) WritePump(pingFrame []byte) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		c.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("ws write error", slog.String("userId", c.UserID()), slog.String("sessionId", c.sessionID), slog.Any("error", err))
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, pingFrame); err != nil {
				slog.Warn("ws ping error", slog.String("userId", c.UserID()), slog.String("sessionId", c.sessionID), slog.Any("error", err))
				return
			}
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				slog.Warn("ws control ping error", slog.String("userId", c.UserID()), slog.String("sessionId", c.sessionID), slog.Any("error", err))
				return
			}
		}
	}
}

// ReadPump consumes inbound frames one at a time, handing each to the frame
// processor before reading the next. Exiting the loop closes the client.
func (c *Client) ReadPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.RefreshPong()
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("ws read error", slog.String("userId", c.UserID()), slog.String("sessionId", c.sessionID), slog.Any("error", err))
			}
			return
		}
		if c.processor != nil {
			c.processor.Process(c, raw)
		}
	}
}
