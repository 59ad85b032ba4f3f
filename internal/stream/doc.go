// Package stream provides the long-lived, server-to-client event channels a
// player attaches to a session.
//
// The package implements:
//   - Channel: the contract the broadcast hub pushes events through
//   - Client: a buffered Channel with a single close subscription
//   - ServeSSE: drains a Client onto a text/event-stream response
//   - ServeWebSocket: drains a Client onto a WebSocket connection
//
// Pushing never blocks the caller. Each Client owns its queue and a writer
// goroutine (the HTTP handler for SSE, the write pump for WebSocket), so a
// slow or broken peer only ever stalls its own stream. A queue that fills up
// drops the client.
//
// Disconnects are observed on the transport itself: the request context for
// SSE and the read pump for WebSocket. Either way the Client is closed and its
// OnClosed callback fires exactly once.
package stream
