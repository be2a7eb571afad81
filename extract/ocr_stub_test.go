//go:build !ocr

package extract

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdfview/ocr"
)

func TestOCRAdapterNotEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	img.Set(1, 1, color.White)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	_, err = OCRAdapter{}.Extract(context.Background(), path)
	assert.ErrorIs(t, err, ocr.ErrOCRNotEnabled)
}

func TestOCRAdapterNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	_, err := OCRAdapter{}.Extract(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedLocator)
}
