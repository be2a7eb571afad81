package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tsawler/pdfview/model"
)

// ErrPageOutOfRange is returned when a page number has no frame.
var ErrPageOutOfRange = errors.New("geometry: page out of range")

// PageBox is the geometry a PDF engine reports for one page: its crop box
// in page space and its raw /Rotate value in degrees.
type PageBox struct {
	CropBox  model.Rect
	Rotation int
}

// Rotation90 returns the normalized rotation and whether the raw value was a
// valid multiple of 90.
func (b PageBox) Rotation90() (model.Rotation, bool) {
	return model.NormalizeRotation(b.Rotation)
}

// DisplaySize returns the page size as laid out on screen, with width and
// height exchanged for pages rotated by 90 or 270 degrees.
func (b PageBox) DisplaySize() (width, height float64) {
	r, _ := b.Rotation90()
	if r.SwapsAxes() {
		return b.CropBox.Height, b.CropBox.Width
	}
	return b.CropBox.Width, b.CropBox.Height
}

// PageFrame is where a page sits in the document view. Pages are stacked
// top to bottom; Y grows downward.
type PageFrame struct {
	Page     int
	Rect     model.Rect
	Degraded bool
}

// Warning describes a non-fatal layout problem with one page
type Warning struct {
	Page    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("page %d: %s", w.Page, w.Message)
}

// FormatWarnings joins warnings into a single human readable line
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}

// Layout is the vertical stack of page frames for a view width. A Layout is
// replaced wholesale when the document or the view width changes.
type Layout struct {
	ViewWidth     float64
	Frames        []PageFrame
	ContentHeight float64
	Warnings      []Warning
}

// ComputePageFrames lays out one frame per page. Each page is scaled so its
// displayed width fills viewWidth; frames stack with no gaps starting at
// y = 0.
//
// A view with no width has no frames. A page whose displayed width is zero
// cannot be scaled. It gets a
// zero-height frame flagged Degraded and a warning, and takes no space.
// A rotation that is not a multiple of 90 is laid out unrotated.
func ComputePageFrames(boxes []PageBox, viewWidth float64) Layout {
	if math.IsNaN(viewWidth) || math.IsInf(viewWidth, 0) || viewWidth <= 0 {
		return Layout{}
	}

	layout := Layout{
		ViewWidth: viewWidth,
		Frames:    make([]PageFrame, 0, len(boxes)),
	}

	y := 0.0
	for i, box := range boxes {
		page := i + 1
		if _, ok := box.Rotation90(); !ok {
			layout.Warnings = append(layout.Warnings, Warning{
				Page:    page,
				Message: fmt.Sprintf("invalid rotation %d, treated as 0", box.Rotation),
			})
		}

		width, height := box.DisplaySize()
		scale := viewWidth / width
		if width <= 0 || height < 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
			layout.Warnings = append(layout.Warnings, Warning{
				Page:    page,
				Message: fmt.Sprintf("degenerate crop box %gx%g", box.CropBox.Width, box.CropBox.Height),
			})
			layout.Frames = append(layout.Frames, PageFrame{
				Page:     page,
				Rect:     model.Rect{X: 0, Y: y, Width: viewWidth},
				Degraded: true,
			})
			continue
		}

		rect := model.Rect{X: 0, Y: y, Width: viewWidth, Height: height * scale}
		layout.Frames = append(layout.Frames, PageFrame{Page: page, Rect: rect})
		y += rect.Height
	}

	layout.ContentHeight = y
	return layout
}

// NumPages returns the number of frames
func (l Layout) NumPages() int {
	return len(l.Frames)
}

// ContentSize returns the intrinsic scrollable size of the document view
func (l Layout) ContentSize() (width, height float64) {
	return l.ViewWidth, l.ContentHeight
}

// Frame returns the frame of a 1-based page number
func (l Layout) Frame(page int) (PageFrame, error) {
	if page < 1 || page > len(l.Frames) {
		return PageFrame{}, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, len(l.Frames))
	}
	return l.Frames[page-1], nil
}

// Intersecting returns the drawable frames that overlap clip, in page order
func (l Layout) Intersecting(clip model.Rect) []PageFrame {
	var out []PageFrame
	for _, f := range l.Frames {
		if f.Degraded {
			continue
		}
		if f.Rect.MinY() >= clip.MaxY() {
			break
		}
		if f.Rect.Intersects(clip) {
			out = append(out, f)
		}
	}
	return out
}

// PageAt returns the page whose frame contains the vertical view offset y
func (l Layout) PageAt(y float64) (int, bool) {
	for _, f := range l.Frames {
		if f.Degraded {
			continue
		}
		if y >= f.Rect.MinY() && y < f.Rect.MaxY() {
			return f.Page, true
		}
	}
	return 0, false
}
