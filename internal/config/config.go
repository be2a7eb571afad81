// Package config loads pdfview settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tsawler/pdfview/internal/logger"
)

type Config struct {
	// HTTP server
	Addr           string
	DocumentRoot   string
	MaxUploadBytes int64
	LogRequests    bool

	// Layout and tiles
	ViewWidth float64
	TileSize  int

	// Search
	ExtractTimeout time.Duration
	ContextBefore  int
	ContextAfter   int
	OCRLanguage    string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads envFile, if given, and then the environment. A missing env
// file is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		Addr:           envOr("PDFVIEW_ADDR", ":8080"),
		DocumentRoot:   os.Getenv("PDFVIEW_DOCUMENT_ROOT"),
		MaxUploadBytes: envInt64("PDFVIEW_MAX_UPLOAD_BYTES", 104857600), // 100MB
		LogRequests:    envBool("PDFVIEW_LOG_REQUESTS", true),

		ViewWidth: envFloat("PDFVIEW_VIEW_WIDTH", 1024),
		TileSize:  envInt("PDFVIEW_TILE_SIZE", 1024),

		ExtractTimeout: envDuration("PDFVIEW_EXTRACT_TIMEOUT", 2*time.Minute),
		ContextBefore:  envInt("PDFVIEW_CONTEXT_BEFORE", 10),
		ContextAfter:   envInt("PDFVIEW_CONTEXT_AFTER", 0),
		OCRLanguage:    envOr("PDFVIEW_OCR_LANGUAGE", "eng"),

		LogLevel:  envOr("PDFVIEW_LOG_LEVEL", "info"),
		LogFormat: envOr("PDFVIEW_LOG_FORMAT", "text"),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 104857600
	}
	if cfg.ExtractTimeout <= 0 {
		cfg.ExtractTimeout = 2 * time.Minute
	}

	return cfg, nil
}

// Validate reports the first setting that cannot be used
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("PDFVIEW_ADDR is required")
	}
	if c.ViewWidth <= 0 {
		return fmt.Errorf("PDFVIEW_VIEW_WIDTH must be positive, got %v", c.ViewWidth)
	}
	if c.TileSize < 64 || c.TileSize&(c.TileSize-1) != 0 {
		return fmt.Errorf("PDFVIEW_TILE_SIZE must be a power of two of at least 64, got %d", c.TileSize)
	}
	if c.ContextBefore < 0 || c.ContextAfter < 0 {
		return fmt.Errorf("PDFVIEW_CONTEXT_BEFORE and PDFVIEW_CONTEXT_AFTER must not be negative")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("PDFVIEW_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.DocumentRoot != "" {
		info, err := os.Stat(c.DocumentRoot)
		if err != nil {
			return fmt.Errorf("PDFVIEW_DOCUMENT_ROOT: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("PDFVIEW_DOCUMENT_ROOT %s is not a directory", c.DocumentRoot)
		}
	}
	return nil
}

// Logger returns the logger configuration
func (c Config) Logger() logger.Config {
	return logger.Config{
		Level:  logger.ParseLevel(c.LogLevel),
		Format: c.LogFormat,
	}
}

// LogValue keeps configuration dumps on one line
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.Addr),
		slog.Float64("view_width", c.ViewWidth),
		slog.Int("tile_size", c.TileSize),
		slog.Duration("extract_timeout", c.ExtractTimeout),
		slog.String("document_root", c.DocumentRoot),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
