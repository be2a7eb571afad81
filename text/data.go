package text

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedDocumentData is returned when extraction output cannot be
// decoded.
var ErrMalformedDocumentData = errors.New("text: malformed document data")

// ParseDocumentData decodes the JSON emitted by the text extraction bridge:
// an array of {"page": n, "content": {"items": [...]}} objects. Items with a
// missing or malformed transform or glyph width table are accepted and
// degraded by NewPageText.
func ParseDocumentData(data []byte) ([]RawPage, error) {
	var pages []RawPage
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocumentData, err)
	}
	for i, p := range pages {
		if p.Page < 1 {
			return nil, fmt.Errorf("%w: entry %d has page number %d", ErrMalformedDocumentData, i, p.Page)
		}
	}
	return pages, nil
}

// MarshalDocumentData encodes pages in the bridge format
func MarshalDocumentData(pages []RawPage) ([]byte, error) {
	return json.Marshal(pages)
}
