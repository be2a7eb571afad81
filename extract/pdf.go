package extract

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/tsawler/pdfview/pdfdoc"
	"github.com/tsawler/pdfview/text"
)

// Gap thresholds, in multiples of the font size.
const (
	spaceGapRatio  = 0.25 // horizontal gap that reads as a space
	columnGapRatio = 3.0  // horizontal gap that ends a run
	overlapRatio   = 0.5  // backward jump that ends a run
	baselineRatio  = 0.2  // baseline drift tolerated within a line
)

// PDFAdapter extracts positioned text from PDF files.
type PDFAdapter struct {
	Logger *slog.Logger
}

// Extract opens the PDF at locator and groups the glyphs of each page into
// runs. Pages whose content cannot be read yield no runs.
func (a PDFAdapter) Extract(ctx context.Context, locator string) ([]text.RawPage, error) {
	log := a.Logger
	if log == nil {
		log = slog.Default()
	}

	doc, err := pdfdoc.Open(locator)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	defer doc.Close()

	n := doc.NumPages()
	pages := make([]text.RawPage, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		glyphs, err := doc.Glyphs(i)
		if err != nil {
			log.Warn("skipping page text", "locator", locator, "page", i, "error", err)
			glyphs = nil
		}
		pages = append(pages, text.RawPage{
			Page:    i,
			Content: text.RawContent{Items: GroupGlyphs(glyphs)},
		})
	}
	return pages, nil
}

type runBuilder struct {
	font   string
	size   float64
	x, y   float64
	end    float64
	sb     strings.Builder
	widths []float64
}

func (r *runBuilder) addGlyph(g pdfdoc.Glyph) {
	// Fold kerning and small gaps into the previous glyph so that summed
	// widths land on each glyph's real position.
	if n := len(r.widths); n > 0 {
		r.widths[n-1] += g.X - r.end
	}

	runes := []rune(g.Text)
	w := g.W / float64(len(runes))
	for _, c := range runes {
		r.sb.WriteRune(c)
		r.widths = append(r.widths, w)
	}
	r.end = g.X + g.W
}

func (r *runBuilder) addSpace(width float64) {
	r.sb.WriteByte(' ')
	r.widths = append(r.widths, width)
	r.end += width
}

func (r *runBuilder) item() text.RawItem {
	return text.RawItem{
		Str:        r.sb.String(),
		Width:      r.end - r.x,
		Height:     r.size,
		Transform:  []float64{r.size, 0, 0, r.size, r.x, r.y},
		CharWidths: r.widths,
	}
}

// GroupGlyphs groups glyphs in content order into runs sharing a font, a
// size and a baseline. A gap within a line becomes a space glyph as wide as
// the gap; a run that ends a line gets a trailing ASCII space of zero width
// so that words on adjacent lines stay apart in the page text.
func GroupGlyphs(glyphs []pdfdoc.Glyph) []text.RawItem {
	var items []text.RawItem
	var cur *runBuilder

	flush := func() {
		if cur != nil && len(cur.widths) > 0 {
			items = append(items, cur.item())
		}
		cur = nil
	}

	for _, g := range glyphs {
		if g.Text == "" {
			continue
		}
		size := glyphSize(g.Size)

		if cur != nil {
			sameLine := math.Abs(g.Y-cur.y) <= baselineRatio*math.Max(size, cur.size)
			gap := g.X - cur.end

			switch {
			case !sameLine, gap > columnGapRatio*size, gap < -overlapRatio*size:
				cur.addSpace(0)
				flush()
			case g.Font != cur.font || size != cur.size:
				if gap > spaceGapRatio*size {
					cur.addSpace(gap)
				}
				flush()
			case gap > spaceGapRatio*size:
				cur.addSpace(gap)
			}
		}

		if cur == nil {
			cur = &runBuilder{font: g.Font, size: size, x: g.X, y: g.Y, end: g.X}
		}
		cur.addGlyph(g)
	}
	flush()

	return items
}

func glyphSize(size float64) float64 {
	size = math.Abs(size)
	if size == 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return 1
	}
	return size
}
