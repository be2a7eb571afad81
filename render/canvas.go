package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/tsawler/pdfview/geometry"
	"github.com/tsawler/pdfview/model"
)

// Canvas is the drawing context handed to a Source. Coordinates passed to
// its methods are in PDF page space; CTM maps them to device pixels.
type Canvas interface {
	CTM() model.Matrix
	FillRect(r model.Rect, c color.Color)
	// DrawText draws s with its baseline origin at the origin of m. The
	// font size is the scale of m.
	DrawText(s string, m model.Matrix)
	// DrawImage stretches img over r, top row at r.MaxY().
	DrawImage(img image.Image, r model.Rect)
}

// Source provides the page geometry and content of a document.
type Source interface {
	NumPages() int
	PageBox(page int) (geometry.PageBox, error)
	DrawPage(page int, c Canvas) error
}

var (
	fontOnce sync.Once
	goFont   *truetype.Font
	fontErr  error
)

func previewFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		goFont, fontErr = freetype.ParseFont(goregular.TTF)
	})
	return goFont, fontErr
}

// RasterCanvas draws into an RGBA image
type RasterCanvas struct {
	dst  *image.RGBA
	ctm  model.Matrix
	clip image.Rectangle
}

// NewRasterCanvas returns a canvas drawing into dst through ctm. Drawing is
// limited to clip.
func NewRasterCanvas(dst *image.RGBA, ctm model.Matrix, clip image.Rectangle) *RasterCanvas {
	return &RasterCanvas{dst: dst, ctm: ctm, clip: clip.Intersect(dst.Bounds())}
}

// CTM returns the page-to-device transform
func (c *RasterCanvas) CTM() model.Matrix { return c.ctm }

// FillRect fills r with col
func (c *RasterCanvas) FillRect(r model.Rect, col color.Color) {
	fillQuad(c.dst, c.clip, c.ctm.TransformRect(r), image.NewUniform(col), draw.Over)
}

// DrawText draws a glyph preview of s in Go Regular
func (c *RasterCanvas) DrawText(s string, m model.Matrix) {
	f, err := previewFont()
	if err != nil || s == "" {
		return
	}

	dev := m.Multiply(c.ctm)
	size := math.Sqrt(math.Abs(dev.Determinant()))
	if size < 1 || math.IsNaN(size) || math.IsInf(size, 0) {
		return
	}
	origin := dev.Transform(model.Point{})

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(size)
	ctx.SetHinting(font.HintingNone)
	ctx.SetClip(c.clip)
	ctx.SetDst(c.dst)
	ctx.SetSrc(image.Black)
	_, _ = ctx.DrawString(s, fixed.Point26_6{
		X: fixed.Int26_6(origin.X * 64),
		Y: fixed.Int26_6(origin.Y * 64),
	})
}

// DrawImage draws img stretched over r
func (c *RasterCanvas) DrawImage(img image.Image, r model.Rect) {
	b := img.Bounds()
	if b.Empty() || r.IsEmpty() {
		return
	}
	sx := r.Width / float64(b.Dx())
	sy := r.Height / float64(b.Dy())

	// image pixels -> page space, top row at the top of r
	s2p := model.Translate(-float64(b.Min.X), -float64(b.Min.Y)).
		Multiply(model.Matrix{sx, 0, 0, -sy, r.X, r.Y + r.Height})
	m := s2p.Multiply(c.ctm)

	sub := c.dst.SubImage(c.clip).(*image.RGBA)
	xdraw.BiLinear.Transform(sub, f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}, img, b, xdraw.Over, nil)
}

// fillQuad rasterizes q into dst with src, limited to clip
func fillQuad(dst *image.RGBA, clip image.Rectangle, q model.Quad, src image.Image, op draw.Op) {
	area := q.Bounds()
	r := image.Rect(
		int(math.Floor(area.MinX())), int(math.Floor(area.MinY())),
		int(math.Ceil(area.MaxX())), int(math.Ceil(area.MaxY())),
	).Intersect(clip)
	if r.Empty() {
		return
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = op
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	z.MoveTo(float32(q[0].X-ox), float32(q[0].Y-oy))
	for _, p := range q[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()
	z.Draw(dst, r, src, r.Min)
}

// quadMask rasterizes q into an alpha mask covering clip
func quadMask(clip image.Rectangle, q model.Quad) (*image.Alpha, image.Rectangle) {
	area := q.Bounds()
	r := image.Rect(
		int(math.Floor(area.MinX())), int(math.Floor(area.MinY())),
		int(math.Ceil(area.MaxX())), int(math.Ceil(area.MaxY())),
	).Intersect(clip)
	if r.Empty() {
		return nil, r
	}

	mask := image.NewAlpha(r)
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	z.MoveTo(float32(q[0].X-ox), float32(q[0].Y-oy))
	for _, p := range q[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()
	z.Draw(mask, r, image.Opaque, image.Point{})
	return mask, r
}

// multiply blends col over dst where mask is set, darkening only
func multiply(dst *image.RGBA, mask *image.Alpha, r image.Rectangle, col color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			a := uint32(mask.AlphaAt(x, y).A)
			if a == 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			px := dst.Pix[i : i+3 : i+3]
			for ch, k := range [3]uint32{uint32(col.R), uint32(col.G), uint32(col.B)} {
				v := uint32(px[ch])
				blended := v * k / 255
				px[ch] = uint8((v*(255-a) + blended*a) / 255)
			}
		}
	}
}
