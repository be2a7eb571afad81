package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"sync"

	"github.com/tsawler/pdfview/geometry"
	"github.com/tsawler/pdfview/model"
	"github.com/tsawler/pdfview/search"
)

// Common errors
var (
	ErrInvalidZoom = errors.New("render: zoom must be positive")
	ErrNoLayout    = errors.New("render: view width not set")
)

var (
	// Background is drawn outside the pages
	Background = color.RGBA{0xE5, 0xE5, 0xE5, 0xFF}
	// PageColor fills each page before its content
	PageColor = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	// HighlightColor is multiplied over matched glyphs
	HighlightColor = color.RGBA{0xFF, 0xEB, 0x3B, 0xFF}
)

// Config configures a Renderer
type Config struct {
	// TileSize is the tile edge in device pixels. Zero means DefaultTileSize.
	TileSize int
	// MaxCachedTiles bounds the tile cache. Zero means 256.
	MaxCachedTiles int
	Logger         *slog.Logger
}

// Renderer draws a document as a vertical stack of pages in view space,
// with search highlights on top. Rendered tiles are cached until the
// highlights change structurally or the view width changes.
//
// A Renderer is safe for concurrent use.
type Renderer struct {
	src   Source
	boxes []geometry.PageBox
	cfg   Config
	log   *slog.Logger

	mu         sync.Mutex
	layout     geometry.Layout
	highlights []search.Result
	generation uint64
	tiles      map[TileKey]*image.RGBA
	order      []TileKey
}

// NewRenderer reads the page geometry of src. Pages whose geometry cannot
// be read lay out as degraded pages.
func NewRenderer(src Source, cfg Config) *Renderer {
	if cfg.TileSize <= 0 {
		cfg.TileSize = DefaultTileSize
	}
	if cfg.MaxCachedTiles <= 0 {
		cfg.MaxCachedTiles = 256
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	boxes := make([]geometry.PageBox, src.NumPages())
	for i := range boxes {
		b, err := src.PageBox(i + 1)
		if err != nil {
			log.Warn("page geometry unavailable", "page", i+1, "error", err)
			continue
		}
		boxes[i] = b
	}

	return &Renderer{
		src:   src,
		boxes: boxes,
		cfg:   cfg,
		log:   log,
		tiles: make(map[TileKey]*image.RGBA),
	}
}

// PageBoxes returns the geometry of every page
func (r *Renderer) PageBoxes() []geometry.PageBox {
	out := make([]geometry.PageBox, len(r.boxes))
	copy(out, r.boxes)
	return out
}

// SetViewWidth lays the pages out for a new view width. Cached tiles are
// discarded, so placeholders are empty until tiles are drawn again.
func (r *Renderer) SetViewWidth(width float64) geometry.Layout {
	layout := geometry.ComputePageFrames(r.boxes, width)
	for _, w := range layout.Warnings {
		r.log.Warn("page layout degraded", "page", w.Page, "reason", w.Message)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if layout.ViewWidth != r.layout.ViewWidth || len(layout.Frames) != len(r.layout.Frames) {
		r.resetLocked()
	}
	r.layout = layout
	return layout
}

// Layout returns the current layout
func (r *Renderer) Layout() geometry.Layout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout
}

// SetHighlights replaces the highlighted results. It reports whether the
// set changed; only a structural change invalidates rendered tiles.
func (r *Renderer) SetHighlights(results []search.Result) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if search.EqualResults(r.highlights, results) {
		return false
	}
	r.highlights = append([]search.Result(nil), results...)
	r.resetLocked()
	return true
}

// Highlights returns the highlighted results
func (r *Renderer) Highlights() []search.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]search.Result(nil), r.highlights...)
}

// Generation increases every time rendered content is invalidated
func (r *Renderer) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

func (r *Renderer) resetLocked() {
	r.generation++
	r.tiles = make(map[TileKey]*image.RGBA)
	r.order = r.order[:0]
}

// Draw renders the view-space region clip into dst at zoom device pixels
// per view unit. Only pages intersecting clip are drawn.
func (r *Renderer) Draw(dst *image.RGBA, clip model.Rect, zoom float64) error {
	r.mu.Lock()
	layout := r.layout
	highlights := r.highlights
	r.mu.Unlock()

	return r.draw(dst, layout, highlights, clip, zoom)
}

func (r *Renderer) draw(dst *image.RGBA, layout geometry.Layout, highlights []search.Result, clip model.Rect, zoom float64) error {
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidZoom, zoom)
	}

	bounds := dst.Bounds()
	draw.Draw(dst, bounds, image.NewUniform(Background), image.Point{}, draw.Src)

	device := geometry.ViewToDevice(clip, zoom).Multiply(model.Translate(float64(bounds.Min.X), float64(bounds.Min.Y)))

	for _, frame := range layout.Intersecting(clip) {
		box := r.boxes[frame.Page-1]
		plan, err := geometry.PageDrawTransform(box, frame.Rect)
		if err != nil {
			r.log.Warn("skipping page", "page", frame.Page, "error", err)
			continue
		}
		plan = plan.WithDevice(device)

		pageArea := quadRect(plan.ClipQuad()).Intersect(bounds)
		if pageArea.Empty() {
			continue
		}
		fillQuad(dst, pageArea, plan.ClipQuad(), image.NewUniform(PageColor), draw.Over)

		canvas := NewRasterCanvas(dst, plan.Content, pageArea)
		if err := r.src.DrawPage(frame.Page, canvas); err != nil {
			r.log.Warn("page content not drawn", "page", frame.Page, "error", err)
		}

		drawHighlights(dst, pageArea, plan, frame.Page, highlights)
	}
	return nil
}

func drawHighlights(dst *image.RGBA, clip image.Rectangle, plan geometry.PagePlan, page int, highlights []search.Result) {
	for _, res := range highlights {
		if res.Page != page {
			continue
		}
		for _, part := range res.Parts {
			q, ok := plan.HighlightQuad(part.Transform, part.StartX, part.EndX, part.Height)
			if !ok {
				continue
			}
			mask, area := quadMask(clip, q)
			if mask == nil {
				continue
			}
			multiply(dst, mask, area, HighlightColor)
		}
	}
}

// RenderPage renders a single page at zoom device pixels per view unit
func (r *Renderer) RenderPage(page int, zoom float64) (*image.RGBA, error) {
	r.mu.Lock()
	layout := r.layout
	highlights := r.highlights
	r.mu.Unlock()

	if layout.NumPages() == 0 {
		return nil, ErrNoLayout
	}
	frame, err := layout.Frame(page)
	if err != nil {
		return nil, err
	}
	if frame.Degraded {
		return nil, fmt.Errorf("render: page %d: %w", page, geometry.ErrDegenerateCropBox)
	}
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidZoom, zoom)
	}

	w := int(math.Ceil(frame.Rect.Width * zoom))
	h := int(math.Ceil(frame.Rect.Height * zoom))
	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	if err := r.draw(img, layout, highlights, frame.Rect, zoom); err != nil {
		return nil, err
	}
	return img, nil
}

func quadRect(q model.Quad) image.Rectangle {
	b := q.Bounds()
	return image.Rect(
		int(math.Floor(b.MinX())), int(math.Floor(b.MinY())),
		int(math.Ceil(b.MaxX())), int(math.Ceil(b.MaxY())),
	)
}
