package render

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/tsawler/pdfview/model"
)

const (
	// DefaultTileSize is the tile edge in device pixels
	DefaultTileSize = 1024
	// LevelsOfDetail is the number of cached zoom levels
	LevelsOfDetail = 5
	// LevelsOfDetailBias is the number of levels above zoom 1. With five
	// levels and a bias of four, levels 0..4 draw at zoom 1, 2, 4, 8 and 16.
	LevelsOfDetailBias = 4
)

// TileKey identifies a tile of the view at one level of detail
type TileKey struct {
	Level int `json:"level"`
	Col   int `json:"col"`
	Row   int `json:"row"`
}

func (k TileKey) String() string {
	return fmt.Sprintf("L%d/%d,%d", k.Level, k.Col, k.Row)
}

// LevelZoom returns the zoom a level draws at
func LevelZoom(level int) float64 {
	return math.Ldexp(1, level+LevelsOfDetailBias-(LevelsOfDetail-1))
}

// LevelForZoom returns the coarsest level whose zoom is at least zoom,
// clamped to the available levels.
func LevelForZoom(zoom float64) int {
	if zoom <= 0 || math.IsNaN(zoom) {
		return 0
	}
	for level := 0; level < LevelsOfDetail; level++ {
		if LevelZoom(level) >= zoom {
			return level
		}
	}
	return LevelsOfDetail - 1
}

// TileSize returns the configured tile edge in device pixels
func (r *Renderer) TileSize() int { return r.cfg.TileSize }

// TileRect returns the view-space region covered by a tile
func (r *Renderer) TileRect(k TileKey) model.Rect {
	span := float64(r.cfg.TileSize) / LevelZoom(k.Level)
	return model.Rect{
		X:      float64(k.Col) * span,
		Y:      float64(k.Row) * span,
		Width:  span,
		Height: span,
	}
}

// VisibleTiles returns the tiles covering viewport at zoom, row by row.
// Tiles outside the laid out content are omitted.
func (r *Renderer) VisibleTiles(viewport model.Rect, zoom float64) []TileKey {
	r.mu.Lock()
	w, h := r.layout.ContentSize()
	r.mu.Unlock()

	content := model.Rect{Width: w, Height: h}
	area := viewport.Intersection(content)
	if area.IsEmpty() {
		return nil
	}

	level := LevelForZoom(zoom)
	span := float64(r.cfg.TileSize) / LevelZoom(level)

	col0 := int(math.Floor(area.MinX() / span))
	col1 := int(math.Ceil(area.MaxX()/span)) - 1
	row0 := int(math.Floor(area.MinY() / span))
	row1 := int(math.Ceil(area.MaxY()/span)) - 1

	tiles := make([]TileKey, 0, (col1-col0+1)*(row1-row0+1))
	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			tiles = append(tiles, TileKey{Level: level, Col: col, Row: row})
		}
	}
	return tiles
}

// DrawTile returns the rendered tile, drawing and caching it if needed. The
// returned image must not be modified.
func (r *Renderer) DrawTile(k TileKey) (*image.RGBA, error) {
	if k.Level < 0 || k.Level >= LevelsOfDetail {
		return nil, fmt.Errorf("render: tile %s: level out of range", k)
	}

	r.mu.Lock()
	if img, ok := r.tiles[k]; ok {
		r.mu.Unlock()
		return img, nil
	}
	layout := r.layout
	highlights := r.highlights
	gen := r.generation
	r.mu.Unlock()

	if layout.NumPages() == 0 {
		return nil, ErrNoLayout
	}

	size := r.cfg.TileSize
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if err := r.draw(img, layout, highlights, r.TileRect(k), LevelZoom(k.Level)); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation == gen {
		r.storeLocked(k, img)
	}
	return img, nil
}

func (r *Renderer) storeLocked(k TileKey, img *image.RGBA) {
	if _, ok := r.tiles[k]; !ok {
		r.order = append(r.order, k)
	}
	r.tiles[k] = img
	for len(r.order) > r.cfg.MaxCachedTiles {
		delete(r.tiles, r.order[0])
		r.order = r.order[1:]
	}
}

// CachedTile returns a tile if it has been drawn since the last
// invalidation.
func (r *Renderer) CachedTile(k TileKey) (*image.RGBA, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.tiles[k]
	return img, ok
}

// Placeholder returns a stand-in for a tile that has not been drawn yet:
// the matching region of the nearest coarser cached tile, upscaled. It
// reports false when no coarser tile is cached.
func (r *Renderer) Placeholder(k TileKey) (*image.RGBA, bool) {
	size := r.cfg.TileSize

	r.mu.Lock()
	defer r.mu.Unlock()

	for d := 1; d <= k.Level; d++ {
		parent := TileKey{Level: k.Level - d, Col: k.Col >> d, Row: k.Row >> d}
		src, ok := r.tiles[parent]
		if !ok {
			continue
		}

		sub := size >> d
		if sub == 0 {
			break
		}
		ox := (k.Col - parent.Col<<d) * sub
		oy := (k.Row - parent.Row<<d) * sub
		region := image.Rect(ox, oy, ox+sub, oy+sub).Add(src.Bounds().Min)

		img := image.NewRGBA(image.Rect(0, 0, size, size))
		xdraw.ApproxBiLinear.Scale(img, img.Bounds(), src, region, xdraw.Src, nil)
		return img, true
	}
	return nil, false
}
