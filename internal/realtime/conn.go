package realtime

import (
	"sync"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 4096

	sendBufferSize = 256
)

// Identity is what the connection authenticated as.
type Identity struct {
	Class     types.ConnClass
	DriverID  uuid.UUID
	CompanyID uuid.UUID
	ClientID  uuid.UUID
}

// Conn is one registered websocket connection. Outbound delivery goes
// through a buffered send channel drained by WritePump; a full buffer
// marks the consumer as slow and the registry drops it.
type Conn struct {
	id       uuid.UUID
	identity Identity

	ws *websocket.Conn

	// mu guards send against closeSend: the registry may drop the
	// connection while the read loop is still replying on it.
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newConn(ws *websocket.Conn, identity Identity) *Conn {
	return &Conn{
		id:       uuid.New(),
		identity: identity,
		ws:       ws,
		send:     make(chan []byte, sendBufferSize),
	}
}

func (c *Conn) ID() uuid.UUID      { return c.id }
func (c *Conn) Identity() Identity { return c.identity }

// trySend enqueues without blocking. False means the buffer is full or
// the connection is already closed.
func (c *Conn) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend shuts the outbound channel exactly once. Sends racing the
// close see the closed flag and fail instead of panicking.
func (c *Conn) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Send enqueues a single event for this connection only.
func (c *Conn) Send(event Event) bool {
	data, err := event.marshal()
	if err != nil {
		return false
	}
	return c.trySend(data)
}

// PrepareRead configures read limits and the pong handler. Called by the
// transport handler before it starts reading.
func (c *Conn) PrepareRead() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
}

// ReadMessage blocks for the next inbound frame.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

// WritePump drains the send buffer to the peer and keeps the connection
// alive with pings. Runs in its own goroutine; returns when the send
// channel is closed or a write fails.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
