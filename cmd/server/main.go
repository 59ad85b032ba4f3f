package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/planning-poker/backend/api/handlers"
	"github.com/planning-poker/backend/internal/config"
	"github.com/planning-poker/backend/internal/db"
	"github.com/planning-poker/backend/internal/hub"
	"github.com/planning-poker/backend/internal/logger"
	"github.com/planning-poker/backend/internal/poker"
	"github.com/planning-poker/backend/internal/repository"
	"github.com/planning-poker/backend/internal/session"
	"github.com/planning-poker/backend/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Ensure data directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize database
	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Initialize repository
	roundRepo := repository.NewRoundRepository(database)

	// Initialize transcripts
	var transcripts *logger.Transcripts
	var recorder hub.Recorder
	if cfg.Transcripts {
		transcripts, err = logger.NewTranscripts(cfg.TranscriptDir)
		if err != nil {
			log.Fatalf("Failed to create transcript directory: %v", err)
		}
		defer transcripts.Close()
		recorder = transcripts
	}

	// Initialize session registry and hub
	registry := session.NewRegistry(session.Config{
		MaxSessions: cfg.MaxSessions,
	})
	eventHub := hub.NewHub(recorder)

	service, err := poker.NewService(registry, eventHub, roundRepo, poker.Config{
		Deck: cfg.Deck,
	})
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}

	if cfg.AllowedOrigin != "*" {
		stream.SetCheckOrigin(func(r *http.Request) bool {
			return r.Header.Get("Origin") == cfg.AllowedOrigin
		})
	}

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(service, transcripts)
	streamHandler := handlers.NewStreamHandler(service, cfg.KeepAlive)

	// Initialize Gin router
	r := gin.Default()

	r.Use(corsMiddleware(cfg.AllowedOrigin))

	// Health check endpoint
	r.GET("/health", handlers.Health)

	// API routes
	api := r.Group("/api")
	{
		sessionHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down server...")
		if transcripts != nil {
			transcripts.Close()
		}
		db.CloseDB()
		os.Exit(0)
	}()

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware returns a CORS middleware allowing the given origin.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
