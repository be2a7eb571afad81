package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/tsawler/pdfview/pdfdoc"
	"github.com/tsawler/pdfview/text"
)

// JSONAdapter reads previously extracted text stored in the document-data
// JSON format.
type JSONAdapter struct{}

// Extract reads and decodes the file at locator
func (JSONAdapter) Extract(ctx context.Context, locator string) ([]text.RawPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := pdfdoc.ResolveLocator(locator)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: read %s: %w", path, err)
	}
	return text.ParseDocumentData(data)
}
