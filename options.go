package pdfview

import (
	"log/slog"
	"time"

	"github.com/tsawler/pdfview/render"
	"github.com/tsawler/pdfview/search"
)

// Options holds configuration for a Viewer.
type Options struct {
	// Viewport size in view units. The view width drives the page layout.
	ViewWidth      float64
	ViewportHeight float64

	// Zoom range for the viewport
	MinZoom float64
	MaxZoom float64

	// Tile edge in device pixels
	TileSize int

	// Search
	ExtractTimeout time.Duration
	Match          search.MatchOptions
	OCRLanguage    string

	// Extractor overrides the adapter chosen from the locator
	Extractor search.Extractor

	// Dispatcher runs search callbacks. Nil means a serial dispatcher owned
	// by the engine.
	Dispatcher search.Dispatcher

	Logger *slog.Logger
}

// DefaultOptions returns the default viewer options.
func DefaultOptions() Options {
	return Options{
		ViewWidth:      1024,
		ViewportHeight: 768,
		MinZoom:        1,
		MaxZoom:        8,
		TileSize:       render.DefaultTileSize,
		ExtractTimeout: search.DefaultExtractTimeout,
		Match:          search.DefaultMatchOptions(),
		OCRLanguage:    "eng",
	}
}

// withDefaults fills every unset field from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ViewWidth <= 0 {
		o.ViewWidth = d.ViewWidth
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = d.ViewportHeight
	}
	if o.MinZoom <= 0 {
		o.MinZoom = d.MinZoom
	}
	if o.MaxZoom < o.MinZoom {
		o.MaxZoom = max(d.MaxZoom, o.MinZoom)
	}
	if o.TileSize <= 0 {
		o.TileSize = d.TileSize
	}
	if o.ExtractTimeout <= 0 {
		o.ExtractTimeout = d.ExtractTimeout
	}
	if o.Match == (search.MatchOptions{}) {
		o.Match = d.Match
	}
	if o.OCRLanguage == "" {
		o.OCRLanguage = d.OCRLanguage
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
