package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"

	// Decoders for scanned pages.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/pdfview/ocr"
	"github.com/tsawler/pdfview/pdfdoc"
	"github.com/tsawler/pdfview/text"
)

// OCRAdapter extracts text from a scanned page image. The image is one page
// whose page space is its pixel grid with Y up.
type OCRAdapter struct {
	// Language is a Tesseract language list such as "eng+fra"; empty means
	// the engine default.
	Language string
}

// Extract recognizes the words of the image at locator
func (a OCRAdapter) Extract(ctx context.Context, locator string) ([]text.RawPage, error) {
	path, err := pdfdoc.ResolveLocator(locator)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: read %s: %w", path, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnsupportedLocator, path, err)
	}

	client, err := ocr.New()
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	defer client.Close()

	if a.Language != "" {
		if err := client.SetLanguage(a.Language); err != nil {
			return nil, fmt.Errorf("extract: set OCR language: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words, err := client.RecognizeWords(data)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := WordItems(ocr.GroupLines(words), float64(cfg.Height))
	return []text.RawPage{{Page: 1, Content: text.RawContent{Items: items}}}, nil
}

// WordItems converts recognized lines into runs, one per word. Characters
// share the word's box width evenly; the space after a word is as wide as
// the gap to the next word, and lines are separated by an ASCII space of
// zero width. imageHeight flips the top-down pixel boxes into page space.
func WordItems(lines [][]ocr.Word, imageHeight float64) []text.RawItem {
	var items []text.RawItem
	for li, line := range lines {
		for i, w := range line {
			h := float64(w.Box.Dy())
			width := float64(w.Box.Dx())
			runes := []rune(w.Text)

			widths := make([]float64, len(runes), len(runes)+1)
			for j := range widths {
				widths[j] = width / float64(len(runes))
			}

			str := w.Text
			switch {
			case i+1 < len(line):
				gap := max(0, float64(line[i+1].Box.Min.X-w.Box.Max.X))
				str += " "
				widths = append(widths, gap)
				width += gap
			case li+1 < len(lines):
				str += " "
				widths = append(widths, 0)
			}

			items = append(items, text.RawItem{
				Str:        str,
				Width:      width,
				Height:     h,
				Transform:  []float64{h, 0, 0, h, float64(w.Box.Min.X), imageHeight - float64(w.Box.Max.Y)},
				CharWidths: widths,
			})
		}
	}
	return items
}
