// Package ocr recognizes words and their positions in scanned page images.
//
// Recognition wraps the Tesseract OCR engine via gosseract and is compiled
// only with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// Without the tag every recognition call returns ErrOCRNotEnabled.
package ocr

import (
	"errors"
	"image"
	"sort"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes, matching Tesseract's numbering.
const (
	PSM_AUTO          PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK  PageSegMode = 6  // Single uniform block of text
	PSM_SINGLE_LINE   PageSegMode = 7  // Single text line
	PSM_SPARSE_TEXT   PageSegMode = 11 // Find as much text as possible
)

// Word is one recognized word and its bounding box in image pixels
// (origin top-left, Y down).
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// GroupLines arranges words into text lines, top to bottom, each sorted left
// to right. A word joins a line when its vertical center lies inside the
// vertical extent of the line's first word.
func GroupLines(words []Word) [][]Word {
	sorted := make([]Word, 0, len(words))
	for _, w := range words {
		if w.Text != "" && !w.Box.Empty() {
			sorted = append(sorted, w)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.Min.Y < sorted[j].Box.Min.Y
	})

	var lines [][]Word
	for _, w := range sorted {
		center := (w.Box.Min.Y + w.Box.Max.Y) / 2
		placed := false
		for i := range lines {
			head := lines[i][0].Box
			if center >= head.Min.Y && center < head.Max.Y {
				lines[i] = append(lines[i], w)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, []Word{w})
		}
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].Box.Min.X < line[j].Box.Min.X
		})
	}
	return lines
}
