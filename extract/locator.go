package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tsawler/pdfview/pdfdoc"
	"github.com/tsawler/pdfview/text"
)

// Options configures the adapters chosen by ForLocator
type Options struct {
	OCRLanguage string
	Logger      *slog.Logger
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".webp": true,
	".bmp":  true,
}

// IsImage reports whether the locator names a scanned page image
func IsImage(locator string) bool {
	return imageExts[strings.ToLower(filepath.Ext(locator))]
}

// ForLocator returns the adapter for a locator based on its extension:
// PDF files, document-data JSON files and page images.
func ForLocator(locator string, opts Options) (Adapter, error) {
	path, err := pdfdoc.ResolveLocator(locator)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return PDFAdapter{Logger: opts.Logger}, nil
	case ext == ".json":
		return JSONAdapter{}, nil
	case imageExts[ext]:
		return OCRAdapter{Language: opts.OCRLanguage}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocator, ext)
	}
}

// Auto returns an Adapter that picks the adapter for each locator with
// ForLocator.
func Auto(opts Options) Adapter {
	return AdapterFunc(func(ctx context.Context, locator string) ([]text.RawPage, error) {
		a, err := ForLocator(locator, opts)
		if err != nil {
			return nil, err
		}
		return a.Extract(ctx, locator)
	})
}
