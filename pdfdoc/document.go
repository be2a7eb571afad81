// Package pdfdoc exposes the page geometry, positioned glyphs and a glyph
// preview of PDF files, backed by github.com/ledongthuc/pdf.
package pdfdoc

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/tsawler/pdfview/geometry"
	"github.com/tsawler/pdfview/model"
	"github.com/tsawler/pdfview/render"
)

// Common errors
var (
	ErrPageOutOfRange = errors.New("pdfdoc: page out of range")
	ErrMalformedPage  = errors.New("pdfdoc: malformed page")
	ErrBadLocator     = errors.New("pdfdoc: unsupported locator")
)

// maxTreeDepth bounds the /Parent walk for inherited attributes
const maxTreeDepth = 64

// Glyph is one positioned character as shown by the content stream.
// X and Y are the baseline origin in page space and W the advance width.
type Glyph struct {
	Text string
	Font string
	Size float64
	X    float64
	Y    float64
	W    float64
}

// Document is an open PDF file. It is safe for concurrent use.
type Document struct {
	path string

	mu     sync.Mutex
	file   *os.File
	reader *pdflib.Reader
	boxes  map[int]geometry.PageBox
	glyphs map[int][]Glyph
}

// ResolveLocator turns a document locator into a file path. Plain paths and
// file:// URIs are accepted.
func ResolveLocator(locator string) (string, error) {
	if !strings.Contains(locator, "://") {
		return locator, nil
	}
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadLocator, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: scheme %q", ErrBadLocator, u.Scheme)
	}
	return u.Path, nil
}

// Open opens the PDF at locator
func Open(locator string) (*Document, error) {
	path, err := ResolveLocator(locator)
	if err != nil {
		return nil, err
	}

	f, r, err := openReader(path)
	if err != nil {
		return nil, fmt.Errorf("pdfdoc: open %s: %w", path, err)
	}

	return &Document{
		path:   path,
		file:   f,
		reader: r,
		boxes:  make(map[int]geometry.PageBox),
		glyphs: make(map[int][]Glyph),
	}, nil
}

func openReader(path string) (f *os.File, r *pdflib.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed pdf: %v", p)
		}
	}()
	return pdflib.Open(path)
}

// Path returns the file path of the document
func (d *Document) Path() string { return d.path }

// Close closes the underlying file
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// NumPages returns the page count
func (d *Document) NumPages() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reader.NumPage()
}

func (d *Document) page(n int) (pdflib.Page, error) {
	if n < 1 || n > d.reader.NumPage() {
		return pdflib.Page{}, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, n, d.reader.NumPage())
	}
	p := d.reader.Page(n)
	if p.V.IsNull() {
		return pdflib.Page{}, fmt.Errorf("%w: page %d has no dictionary", ErrMalformedPage, n)
	}
	return p, nil
}

// PageBox returns the crop box and rotation of a page. The crop box is
// inherited through the page tree and defaults to the media box; the media
// box defaults to US Letter.
func (d *Document) PageBox(n int) (box geometry.PageBox, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if b, ok := d.boxes[n]; ok {
		return b, nil
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: page %d: %v", ErrMalformedPage, n, p)
		}
	}()

	p, err := d.page(n)
	if err != nil {
		return geometry.PageBox{}, err
	}

	media, ok := rectValue(inherited(p.V, "MediaBox"))
	if !ok {
		media = model.NewRect(0, 0, 612, 792)
	}
	crop, ok := rectValue(inherited(p.V, "CropBox"))
	if !ok {
		crop = media
	} else if clipped := crop.Intersection(media); !clipped.IsEmpty() {
		crop = clipped
	}

	box = geometry.PageBox{
		CropBox:  crop,
		Rotation: int(inherited(p.V, "Rotate").Int64()),
	}
	d.boxes[n] = box
	return box, nil
}

// PageBoxes returns the geometry of every page. Pages whose geometry cannot
// be read get an empty crop box, which lays out as a degraded page.
func (d *Document) PageBoxes() []geometry.PageBox {
	n := d.NumPages()
	boxes := make([]geometry.PageBox, n)
	for i := range boxes {
		b, err := d.PageBox(i + 1)
		if err == nil {
			boxes[i] = b
		}
	}
	return boxes
}

// Glyphs returns the characters shown on a page in content stream order.
// Spaces are not reported; callers infer them from gaps.
func (d *Document) Glyphs(n int) (glyphs []Glyph, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if g, ok := d.glyphs[n]; ok {
		return g, nil
	}

	// The reader panics on some malformed content streams.
	defer func() {
		if p := recover(); p != nil {
			glyphs = nil
			err = fmt.Errorf("%w: page %d: %v", ErrMalformedPage, n, p)
		}
	}()

	p, err := d.page(n)
	if err != nil {
		return nil, err
	}

	content := p.Content()
	glyphs = make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		glyphs = append(glyphs, Glyph{
			Text: t.S,
			Font: t.Font,
			Size: t.FontSize,
			X:    t.X,
			Y:    t.Y,
			W:    t.W,
		})
	}
	d.glyphs[n] = glyphs
	return glyphs, nil
}

// DrawPage draws a glyph preview of a page
func (d *Document) DrawPage(n int, c render.Canvas) error {
	glyphs, err := d.Glyphs(n)
	if err != nil {
		return err
	}
	for _, g := range glyphs {
		size := g.Size
		if size <= 0 {
			continue
		}
		c.DrawText(g.Text, model.Matrix{size, 0, 0, size, g.X, g.Y})
	}
	return nil
}

func inherited(v pdflib.Value, key string) pdflib.Value {
	for i := 0; i < maxTreeDepth && !v.IsNull(); i++ {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
		v = v.Key("Parent")
	}
	return pdflib.Value{}
}

func rectValue(v pdflib.Value) (model.Rect, bool) {
	if v.Kind() != pdflib.Array || v.Len() != 4 {
		return model.Rect{}, false
	}
	r := model.RectFromCorners(
		v.Index(0).Float64(), v.Index(1).Float64(),
		v.Index(2).Float64(), v.Index(3).Float64(),
	)
	return r, true
}
