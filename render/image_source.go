package render

import (
	"fmt"
	"image"
	"os"

	// Decoders for scanned pages
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/pdfview/geometry"
	"github.com/tsawler/pdfview/model"
)

// ImageSource is a single page document made of one raster image, one page
// unit per pixel.
type ImageSource struct {
	img      image.Image
	rotation int
}

// NewImageSource wraps img as a one page document shown at rotation degrees
func NewImageSource(img image.Image, rotation int) *ImageSource {
	return &ImageSource{img: img, rotation: rotation}
}

// LoadImage decodes the image file at path into an ImageSource
func LoadImage(path string) (*ImageSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("render: open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("render: decode image %s: %w", path, err)
	}
	return NewImageSource(img, 0), nil
}

// Image returns the page image
func (s *ImageSource) Image() image.Image { return s.img }

// NumPages always returns 1
func (s *ImageSource) NumPages() int { return 1 }

// PageBox returns the image bounds as the crop box
func (s *ImageSource) PageBox(page int) (geometry.PageBox, error) {
	if page != 1 {
		return geometry.PageBox{}, fmt.Errorf("%w: page %d of 1", geometry.ErrPageOutOfRange, page)
	}
	b := s.img.Bounds()
	return geometry.PageBox{
		CropBox:  model.NewRect(0, 0, float64(b.Dx()), float64(b.Dy())),
		Rotation: s.rotation,
	}, nil
}

// DrawPage draws the image over the whole page
func (s *ImageSource) DrawPage(page int, c Canvas) error {
	box, err := s.PageBox(page)
	if err != nil {
		return err
	}
	c.DrawImage(s.img, box.CropBox)
	return nil
}
