package stream

import (
	"io"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// EventPing is written on every keepalive tick.
const EventPing = "ping"

// ServeSSE writes the client's events to the response as server-sent events
// until the transport disconnects or the client is closed. It closes the
// client before returning. A keepAlive of zero disables pings.
func ServeSSE(c *gin.Context, client *Client, keepAlive time.Duration) {
	defer client.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(200)
	c.Writer.Flush()

	var tick <-chan time.Time
	if keepAlive > 0 {
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	disconnected := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-client.Events():
			c.SSEvent(ev.Name, sseData(ev.Data))
			return true
		case <-tick:
			c.SSEvent(EventPing, "")
			return true
		case <-client.Done():
			return false
		case <-disconnected:
			return false
		}
	})

	log.Printf("SSE stream closed (session=%s, player=%s)", client.SessionID(), client.PlayerID())
}

// sseData keeps payload-less events from being rendered as "null".
func sseData(data any) any {
	if data == nil {
		return ""
	}
	return data
}
