// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/planning-poker/backend/internal/model"
)

// Config holds the server configuration.
type Config struct {
	Port          string        `env:"PORT"                envDefault:"8080"`
	DBPath        string        `env:"DB_PATH"             envDefault:"data/poker.db"`
	Transcripts   bool          `env:"TRANSCRIPTS_ENABLED" envDefault:"true"`
	TranscriptDir string        `env:"TRANSCRIPT_DIR"      envDefault:"data/transcripts"`
	MaxSessions   int           `env:"MAX_SESSIONS"        envDefault:"0"`
	Deck          []float64     `env:"ESTIMATE_DECK"       envSeparator:","`
	KeepAlive     time.Duration `env:"STREAM_KEEPALIVE"    envDefault:"30s"`
	AllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
}

// Load reads an optional .env file and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}
	return Parse()
}

// Parse parses the environment into a validated Config.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if len(cfg.Deck) == 0 {
		cfg.Deck = append([]float64(nil), model.DefaultDeck...)
	}
	if err := model.ValidateDeck(cfg.Deck); err != nil {
		return Config{}, fmt.Errorf("ESTIMATE_DECK: %w", err)
	}
	if cfg.MaxSessions < 0 {
		return Config{}, fmt.Errorf("MAX_SESSIONS must not be negative, got %d", cfg.MaxSessions)
	}
	if cfg.KeepAlive < 0 {
		return Config{}, fmt.Errorf("STREAM_KEEPALIVE must not be negative, got %s", cfg.KeepAlive)
	}

	return cfg, nil
}
