// Package pdfview renders paginated documents as a vertically stacked,
// tiled, zoomable canvas and searches their text, highlighting every match
// on the page glyphs it covers.
//
// Basic usage:
//
//	v, err := pdfview.NewViewer("report.pdf", pdfview.DefaultOptions())
//	if err != nil {
//	    // handle error
//	}
//	defer v.Close()
//
//	results, err := v.SearchSync(ctx, "quarterly revenue")
//	if err != nil {
//	    // handle error
//	}
//	if len(results) > 0 {
//	    _ = v.SelectResult(results[0])
//	}
//	for _, key := range v.VisibleTiles() {
//	    tile, _ := v.RenderTile(key)
//	    // draw tile at v.TileRect(key)
//	}
//
// The geometry, render, search and text packages can be used on their own.
package pdfview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/tsawler/pdfview/extract"
	"github.com/tsawler/pdfview/geometry"
	"github.com/tsawler/pdfview/model"
	"github.com/tsawler/pdfview/pdfdoc"
	"github.com/tsawler/pdfview/render"
	"github.com/tsawler/pdfview/search"
)

// ErrResultOutOfRange is returned when a result refers to a page the
// document does not have.
var ErrResultOutOfRange = errors.New("pdfview: result page out of range")

// Viewer is the headless view model of one document: its layout, zoom and
// scroll state, highlighted search results, tiles and search engine.
//
// A Viewer is safe for concurrent use.
type Viewer struct {
	locator  string
	opts     Options
	log      *slog.Logger
	closer   io.Closer
	renderer *render.Renderer
	engine   *search.Engine

	mu        sync.Mutex
	zoom      float64
	offset    model.Point
	lastQuery string
}

// NewViewer opens the document at locator. PDF files and page images are
// supported.
func NewViewer(locator string, opts Options) (*Viewer, error) {
	opts = opts.withDefaults()

	src, closer, err := openSource(locator)
	if err != nil {
		return nil, err
	}

	extractor := opts.Extractor
	if extractor == nil {
		extractor = extract.Auto(extract.Options{
			OCRLanguage: opts.OCRLanguage,
			Logger:      opts.Logger,
		})
	}

	v := &Viewer{
		locator: locator,
		opts:    opts,
		log:     opts.Logger,
		closer:  closer,
		renderer: render.NewRenderer(src, render.Config{
			TileSize: opts.TileSize,
			Logger:   opts.Logger,
		}),
		engine: search.NewEngine(locator, search.Config{
			Extractor:      extractor,
			ExtractTimeout: opts.ExtractTimeout,
			Match:          opts.Match,
			Dispatcher:     opts.Dispatcher,
			Logger:         opts.Logger,
		}),
		zoom: opts.MinZoom,
	}
	v.renderer.SetViewWidth(opts.ViewWidth)

	v.log.Info("document opened", "locator", locator, "pages", src.NumPages())
	return v, nil
}

func openSource(locator string) (render.Source, io.Closer, error) {
	path, err := pdfdoc.ResolveLocator(locator)
	if err != nil {
		return nil, nil, err
	}
	if extract.IsImage(path) {
		src, err := render.LoadImage(path)
		if err != nil {
			return nil, nil, err
		}
		return src, nil, nil
	}
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return doc, doc, nil
}

// Close stops searches and releases the document
func (v *Viewer) Close() error {
	v.engine.Close()
	if v.closer != nil {
		return v.closer.Close()
	}
	return nil
}

// Locator returns the document locator
func (v *Viewer) Locator() string { return v.locator }

// NumPages returns the page count
func (v *Viewer) NumPages() int { return len(v.renderer.PageBoxes()) }

// Layout returns the current page layout
func (v *Viewer) Layout() geometry.Layout { return v.renderer.Layout() }

// Renderer returns the tile renderer
func (v *Viewer) Renderer() *render.Renderer { return v.renderer }

// Engine returns the search engine
func (v *Viewer) Engine() *search.Engine { return v.engine }

// SetViewport resizes the viewport. A width change lays the pages out
// again.
func (v *Viewer) SetViewport(width, height float64) geometry.Layout {
	v.mu.Lock()
	if height > 0 {
		v.opts.ViewportHeight = height
	}
	v.opts.ViewWidth = width
	v.mu.Unlock()

	return v.renderer.SetViewWidth(width)
}

// Zoom returns the zoom scale
func (v *Viewer) Zoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.zoom
}

// SetZoom sets the zoom scale, clamped to the configured range, and returns
// the scale applied.
func (v *Viewer) SetZoom(zoom float64) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if math.IsNaN(zoom) {
		return v.zoom
	}
	v.zoom = min(max(zoom, v.opts.MinZoom), v.opts.MaxZoom)
	return v.zoom
}

// ToggleZoom zooms out to the minimum when zoomed in, and otherwise zooms
// in to the maximum.
func (v *Viewer) ToggleZoom() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.zoom > v.opts.MinZoom {
		v.zoom = v.opts.MinZoom
	} else {
		v.zoom = v.opts.MaxZoom
	}
	return v.zoom
}

// Offset returns the scroll offset in zoomed content coordinates
func (v *Viewer) Offset() model.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// ScrollTo sets the scroll offset in zoomed content coordinates
func (v *Viewer) ScrollTo(p model.Point) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = p
}

// Viewport returns the visible region in view space
func (v *Viewer) Viewport() model.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return model.Rect{
		X:      v.offset.X / v.zoom,
		Y:      v.offset.Y / v.zoom,
		Width:  v.opts.ViewWidth / v.zoom,
		Height: v.opts.ViewportHeight / v.zoom,
	}
}

// Search starts a search, cancelling the previous one. When it completes,
// its results become the highlighted set and cb, if not nil, is called on
// the engine's dispatcher.
func (v *Viewer) Search(query string, cb func(results []search.Result, err error)) error {
	v.mu.Lock()
	v.lastQuery = query
	v.mu.Unlock()

	return v.engine.Search(query, func(_ string, results []search.Result, err error) {
		if err == nil {
			v.renderer.SetHighlights(results)
		}
		if cb != nil {
			cb(results, err)
		}
	})
}

// SearchSync runs a search, highlights its results and returns them
func (v *Viewer) SearchSync(ctx context.Context, query string) ([]search.Result, error) {
	v.mu.Lock()
	v.lastQuery = query
	v.mu.Unlock()

	results, err := v.engine.SearchSync(ctx, query)
	if err != nil {
		return nil, err
	}
	v.renderer.SetHighlights(results)
	return results, nil
}

// LastQuery returns the most recent search query
func (v *Viewer) LastQuery() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastQuery
}

// Highlights returns the highlighted results
func (v *Viewer) Highlights() []search.Result { return v.renderer.Highlights() }

// ClearHighlights removes every highlight
func (v *Viewer) ClearHighlights() { v.renderer.SetHighlights(nil) }

// SelectResult highlights only r, resets the zoom to the minimum and
// scrolls to the top of its page.
func (v *Viewer) SelectResult(r search.Result) error {
	frame, err := v.renderer.Layout().Frame(r.Page)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResultOutOfRange, err)
	}

	v.renderer.SetHighlights([]search.Result{r})

	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoom = v.opts.MinZoom
	v.offset = model.Point{X: frame.Rect.X * v.zoom, Y: frame.Rect.Y * v.zoom}
	return nil
}

// VisibleTiles returns the tiles covering the viewport at the current zoom
func (v *Viewer) VisibleTiles() []render.TileKey {
	return v.renderer.VisibleTiles(v.Viewport(), v.Zoom())
}

// TileRect returns the view-space region of a tile
func (v *Viewer) TileRect(k render.TileKey) model.Rect { return v.renderer.TileRect(k) }

// RenderTile draws a tile, reusing the cached image when it is current
func (v *Viewer) RenderTile(k render.TileKey) (*image.RGBA, error) {
	return v.renderer.DrawTile(k)
}

// Placeholder returns an upscaled coarser tile to show while k is drawn
func (v *Viewer) Placeholder(k render.TileKey) (*image.RGBA, bool) {
	return v.renderer.Placeholder(k)
}

// RenderPage draws one page at zoom device pixels per view unit
func (v *Viewer) RenderPage(page int, zoom float64) (*image.RGBA, error) {
	return v.renderer.RenderPage(page, zoom)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	v := pdfview.Must(pdfview.NewViewer("document.pdf", pdfview.DefaultOptions()))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
