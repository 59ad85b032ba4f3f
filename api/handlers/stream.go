package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/planning-poker/backend/internal/model"
	"github.com/planning-poker/backend/internal/poker"
	"github.com/planning-poker/backend/internal/stream"
)

// StreamHandler attaches player event streams.
type StreamHandler struct {
	service   *poker.Service
	keepAlive time.Duration
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(service *poker.Service, keepAlive time.Duration) *StreamHandler {
	return &StreamHandler{
		service:   service,
		keepAlive: keepAlive,
	}
}

// joinFromRequest builds the attach request from the path and ?name= query.
func joinFromRequest(c *gin.Context) model.JoinRequest {
	req := model.JoinRequest{
		PlayerID:   c.Param("playerId"),
		PlayerName: c.Query("name"),
	}
	req.Normalize()
	return req
}

// Events handles GET /api/sessions/:id/players/:playerId/events - attaches
// a server-sent event stream. The stream stays open until the client leaves.
func (h *StreamHandler) Events(c *gin.Context) {
	sessionID := c.Param("id")
	req := joinFromRequest(c)
	if err := req.Validate(); err != nil {
		sendServiceError(c, err)
		return
	}

	client := stream.NewClient(sessionID, req.PlayerID)
	if _, err := h.service.AttachPlayer(c.Request.Context(), sessionID, req, client); err != nil {
		sendServiceError(c, err)
		return
	}

	stream.ServeSSE(c, client, h.keepAlive)
}

// WebSocket handles GET /api/sessions/:id/players/:playerId/ws - attaches a
// WebSocket event stream.
func (h *StreamHandler) WebSocket(c *gin.Context) {
	sessionID := c.Param("id")
	req := joinFromRequest(c)
	if err := req.Validate(); err != nil {
		sendServiceError(c, err)
		return
	}
	if !h.service.SessionExists(sessionID) {
		sendServiceError(c, model.ErrSessionNotFound)
		return
	}

	conn, err := stream.UpgradeWebSocket(c.Writer, c.Request)
	if err != nil {
		log.Printf("WebSocket upgrade failed (session=%s, player=%s): %v", sessionID, req.PlayerID, err)
		return
	}

	client := stream.NewClient(sessionID, req.PlayerID)
	if _, err := h.service.AttachPlayer(c.Request.Context(), sessionID, req, client); err != nil {
		stream.RejectWebSocket(conn, err.Error())
		return
	}

	stream.ServeWebSocket(conn, client)
}

// RegisterRoutes registers the stream handler routes on a Gin router group.
func (h *StreamHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sessions/:id/players/:playerId/events", h.Events)
	rg.GET("/sessions/:id/players/:playerId/ws", h.WebSocket)
}

// Health handles GET /health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
