package stream

import (
	"log"
	"sync"
)

// sendBufferSize is the number of queued events a client may hold before it
// is considered too slow and dropped.
const sendBufferSize = 256

// Channel is an outbound event stream owned by a single player.
type Channel interface {
	// Push queues a named event. It never blocks and reports whether the
	// event was accepted; a false result must be treated as best-effort loss.
	Push(event string, data any) bool

	// OnClosed registers the callback fired once when the stream closes.
	OnClosed(fn func())

	// Close closes the stream. It is safe to call more than once.
	Close()
}

// Event is a named event waiting to be written to the transport.
type Event struct {
	Name string
	Data any
}

// Client is a buffered Channel. Writers drain Events until Done is closed.
type Client struct {
	sessionID string
	playerID  string
	send      chan Event
	done      chan struct{}

	mu       sync.Mutex
	closed   bool
	onClosed func()
}

// NewClient creates a new client for a player in a session.
func NewClient(sessionID, playerID string) *Client {
	return newClientSize(sessionID, playerID, sendBufferSize)
}

func newClientSize(sessionID, playerID string, size int) *Client {
	return &Client{
		sessionID: sessionID,
		playerID:  playerID,
		send:      make(chan Event, size),
		done:      make(chan struct{}),
	}
}

// Push queues an event for the writer. A full queue drops the client.
func (c *Client) Push(event string, data any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- Event{Name: event, Data: data}:
		return true
	default:
		log.Printf("Send buffer full, dropping slow client (session=%s, player=%s)", c.sessionID, c.playerID)
		// Close runs the close callback, which may need locks the pusher holds.
		go c.Close()
		return false
	}
}

// OnClosed registers fn to run once when the client closes. If the client is
// already closed fn runs immediately. A later registration replaces an
// earlier one that has not fired yet.
func (c *Client) OnClosed(fn func()) {
	c.mu.Lock()
	if !c.closed {
		c.onClosed = fn
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Close closes the client and fires the close callback.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	fn := c.onClosed
	c.onClosed = nil
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// IsClosed returns true if the client is closed.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Events returns the queue the writer drains.
func (c *Client) Events() <-chan Event {
	return c.send
}

// Done is closed when the client closes.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// SessionID returns the session ID associated with this client.
func (c *Client) SessionID() string {
	return c.sessionID
}

// PlayerID returns the player ID that owns this client.
func (c *Client) PlayerID() string {
	return c.playerID
}
