package text

import (
	"unicode/utf8"

	"github.com/tsawler/pdfview/model"
)

// TextRun is one positioned run of text extracted from a page: a contiguous
// span sharing one transform and metrics. A TextRun is immutable once built;
// all access goes through its methods.
type TextRun struct {
	text       string
	length     int
	dir        Direction
	width      float64
	height     float64
	transform  model.Matrix
	start      int
	charWidths []float64
}

// NewTextRun builds a run starting at rune offset start of its page buffer.
// charWidths is kept only when it has one entry per rune of text.
func NewTextRun(text string, dir Direction, width, height float64, transform model.Matrix, start int, charWidths []float64) TextRun {
	n := utf8.RuneCountInString(text)
	var widths []float64
	if len(charWidths) == n && n > 0 {
		widths = make([]float64, n)
		copy(widths, charWidths)
	}
	return TextRun{
		text:       text,
		length:     n,
		dir:        dir,
		width:      width,
		height:     height,
		transform:  transform,
		start:      start,
		charWidths: widths,
	}
}

// Text returns the run text
func (r TextRun) Text() string { return r.text }

// Len returns the number of characters (runes) in the run
func (r TextRun) Len() int { return r.length }

// Direction returns the writing direction
func (r TextRun) Direction() Direction { return r.dir }

// Width returns the advance width of the run in page units
func (r TextRun) Width() float64 { return r.width }

// Height returns the run height (the font size for most extractors)
func (r TextRun) Height() float64 { return r.height }

// Transform returns the text-space to page-space transform
func (r TextRun) Transform() model.Matrix { return r.transform }

// StartOffset returns the rune offset of the run in its page buffer
func (r TextRun) StartOffset() int { return r.start }

// EndOffset returns StartOffset()+Len()
func (r TextRun) EndOffset() int { return r.start + r.length }

// HasCharWidths reports whether per-glyph widths are available
func (r TextRun) HasCharWidths() bool { return len(r.charWidths) > 0 }

// CharWidths returns a copy of the per-glyph widths (nil when unavailable)
func (r TextRun) CharWidths() []float64 {
	if r.charWidths == nil {
		return nil
	}
	out := make([]float64, len(r.charWidths))
	copy(out, r.charWidths)
	return out
}

// GlyphSpan returns the horizontal extent, in text-space units along the
// run, of the characters [start, end) of the run. startX is the sum of the
// widths before start and endX adds the widths of the span.
//
// Without per-glyph widths the run width is spread uniformly over its
// characters and approximate is true.
func (r TextRun) GlyphSpan(start, end int) (startX, endX float64, approximate bool) {
	start = clamp(start, 0, r.length)
	end = clamp(end, start, r.length)

	if len(r.charWidths) == 0 {
		if r.length == 0 {
			return 0, r.width, true
		}
		unit := r.width / float64(r.length)
		return unit * float64(start), unit * float64(end), true
	}

	for i := 0; i < start; i++ {
		startX += r.charWidths[i]
	}
	endX = startX
	for i := start; i < end; i++ {
		endX += r.charWidths[i]
	}
	return startX, endX, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
