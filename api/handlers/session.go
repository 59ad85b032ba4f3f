package handlers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/planning-poker/backend/internal/logger"
	"github.com/planning-poker/backend/internal/model"
	"github.com/planning-poker/backend/internal/poker"
)

// SessionHandler handles HTTP requests for sessions and estimates.
type SessionHandler struct {
	service     *poker.Service
	transcripts *logger.Transcripts
}

// NewSessionHandler creates a new SessionHandler. transcripts may be nil.
func NewSessionHandler(service *poker.Service, transcripts *logger.Transcripts) *SessionHandler {
	return &SessionHandler{
		service:     service,
		transcripts: transcripts,
	}
}

// StartSessionRequest represents the request body for starting a session.
type StartSessionRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name" binding:"required"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// JoinRequest represents the request body for adding a player.
type JoinRequest struct {
	PlayerID   string `json:"playerId" binding:"required"`
	PlayerName string `json:"playerName" binding:"required"`
}

// EstimateRequest represents the request body for setting an estimate.
// A null or missing estimate clears the player's vote.
type EstimateRequest struct {
	Estimate *float64 `json:"estimate"`
}

// SessionResponse represents a session in API responses.
type SessionResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Players       []model.Player `json:"players"`
	EstimateCount int            `json:"estimateCount"`
	CreatedAt     string         `json:"createdAt"`
}

// toSessionResponse converts a model.SessionView to SessionResponse.
func toSessionResponse(v model.SessionView) *SessionResponse {
	players := v.Players
	if players == nil {
		players = []model.Player{}
	}
	return &SessionResponse{
		ID:            v.ID,
		Name:          v.Name,
		Players:       players,
		EstimateCount: v.EstimateCount,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
}

// Start handles POST /api/sessions - starts a session, or returns the
// existing one with the same id.
func (h *SessionHandler) Start(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}

	view, created, err := h.service.StartSession(c.Request.Context(), model.StartSessionRequest{
		ID:         req.ID,
		Name:       req.Name,
		PlayerID:   req.PlayerID,
		PlayerName: req.PlayerName,
	})
	if err != nil {
		sendServiceError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, toSessionResponse(view))
}

// Join handles GET /api/sessions/:id - returns the session name and players.
func (h *SessionHandler) Join(c *gin.Context) {
	view, err := h.service.JoinSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(view))
}

// AddPlayer handles POST /api/sessions/:id/players - registers a player.
func (h *SessionHandler) AddPlayer(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}

	view, err := h.service.AddPlayer(c.Request.Context(), c.Param("id"), model.JoinRequest{
		PlayerID:   req.PlayerID,
		PlayerName: req.PlayerName,
	})
	if err != nil {
		sendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(view))
}

// SetEstimate handles PUT /api/sessions/:id/players/:playerId/estimate.
// An unknown player is ignored; the request still succeeds.
func (h *SessionHandler) SetEstimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}

	if err := h.service.SetEstimate(c.Request.Context(), c.Param("id"), c.Param("playerId"), req.Estimate); err != nil {
		sendServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Reveal handles POST /api/sessions/:id/reveal - reveals every estimate.
func (h *SessionHandler) Reveal(c *gin.Context) {
	round, err := h.service.Reveal(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, round)
}

// Clear handles POST /api/sessions/:id/clear - resets every estimate.
func (h *SessionHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), c.Param("id")); err != nil {
		sendServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Rounds handles GET /api/sessions/:id/rounds - lists revealed rounds.
func (h *SessionHandler) Rounds(c *gin.Context) {
	rounds, err := h.service.Rounds(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rounds)
}

// Deck handles GET /api/deck - lists the accepted estimates.
func (h *SessionHandler) Deck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"deck": h.service.Deck()})
}

// Transcript handles GET /api/sessions/:id/transcript - downloads the
// session's event transcript.
func (h *SessionHandler) Transcript(c *gin.Context) {
	sessionID := c.Param("id")
	if !h.service.SessionExists(sessionID) {
		sendServiceError(c, model.ErrSessionNotFound)
		return
	}

	if h.transcripts == nil {
		sendError(c, http.StatusNotFound, "TRANSCRIPT_NOT_FOUND", "Transcripts are disabled")
		return
	}

	path, err := h.transcripts.Path(sessionID)
	if err != nil {
		sendError(c, http.StatusNotFound, "TRANSCRIPT_NOT_FOUND", "No transcript for session "+sessionID)
		return
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		sendError(c, http.StatusNotFound, "TRANSCRIPT_NOT_FOUND", "No transcript for session "+sessionID)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Content-Disposition", "attachment; filename="+sessionID+".jsonl")
	c.File(path)
}

// RegisterRoutes registers the session handler routes on a Gin router group.
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/deck", h.Deck)

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.Start)
		sessions.GET("/:id", h.Join)
		sessions.POST("/:id/players", h.AddPlayer)
		sessions.PUT("/:id/players/:playerId/estimate", h.SetEstimate)
		sessions.POST("/:id/reveal", h.Reveal)
		sessions.POST("/:id/clear", h.Clear)
		sessions.GET("/:id/rounds", h.Rounds)
		sessions.GET("/:id/transcript", h.Transcript)
	}
}
