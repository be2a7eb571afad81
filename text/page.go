package text

import (
	"sort"
	"strings"

	"github.com/tsawler/pdfview/model"
)

// RawItem is one text item as reported by a text extraction service, before
// it is placed in a page buffer. Transform and CharWidths are optional.
type RawItem struct {
	Str        string    `json:"str"`
	Dir        string    `json:"dir"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Transform  []float64 `json:"transform,omitempty"`
	CharWidths []float64 `json:"strCharsWidths,omitempty"`
}

// RawContent holds the items of one page
type RawContent struct {
	Items []RawItem `json:"items"`
}

// RawPage is the extraction output for one page
type RawPage struct {
	Page    int        `json:"page"`
	Content RawContent `json:"content"`
}

// PageText is the searchable text of one page: its runs in order and the
// concatenation of their texts. A PageText is immutable once built.
type PageText struct {
	number  int
	runs    []TextRun
	text    string
	offsets []int // byte offset of each rune, plus a final len(text)
}

// NewPageText builds the text index of a page. Each run starts at the running
// character count of the buffer built so far. Missing or malformed
// transforms default to the identity and glyph widths whose length does not
// match the text are dropped.
func NewPageText(raw RawPage) PageText {
	var sb strings.Builder
	runs := make([]TextRun, 0, len(raw.Content.Items))
	offset := 0

	for _, item := range raw.Content.Items {
		// Invalid bytes at run edges could otherwise merge into one
		// character and shift every later offset.
		str := strings.ToValidUTF8(item.Str, "\uFFFD")
		transform, _ := model.MatrixFromSlice(item.Transform)

		dir := ParseDirection(item.Dir)
		if strings.TrimSpace(item.Dir) == "" {
			dir = DetectDirection(str)
		}

		run := NewTextRun(str, dir, item.Width, item.Height, transform, offset, item.CharWidths)
		runs = append(runs, run)
		sb.WriteString(str)
		offset += run.Len()
	}

	full := sb.String()
	offsets := make([]int, 0, offset+1)
	for i := range full {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(full))

	return PageText{
		number:  raw.Page,
		runs:    runs,
		text:    full,
		offsets: offsets,
	}
}

// BuildPages converts extraction output into page texts ordered by page
// number.
func BuildPages(raw []RawPage) []PageText {
	pages := make([]PageText, 0, len(raw))
	for _, rp := range raw {
		pages = append(pages, NewPageText(rp))
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].number < pages[j].number
	})
	return pages
}

// Number returns the 1-based page number
func (p PageText) Number() int { return p.number }

// Text returns the concatenated page text
func (p PageText) Text() string { return p.text }

// Len returns the number of characters (runes) in the page text
func (p PageText) Len() int {
	if len(p.offsets) == 0 {
		return 0
	}
	return len(p.offsets) - 1
}

// NumRuns returns the number of runs
func (p PageText) NumRuns() int { return len(p.runs) }

// Run returns the i-th run
func (p PageText) Run(i int) TextRun { return p.runs[i] }

// Slice returns the characters [start, end) of the page text. Bounds are
// clamped to the text.
func (p PageText) Slice(start, end int) string {
	n := p.Len()
	start = clamp(start, 0, n)
	end = clamp(end, start, n)
	if n == 0 {
		return ""
	}
	return p.text[p.offsets[start]:p.offsets[end]]
}

// ByteOffset converts a character offset into a byte offset of Text()
func (p PageText) ByteOffset(runeOffset int) int {
	if len(p.offsets) == 0 {
		return 0
	}
	return p.offsets[clamp(runeOffset, 0, len(p.offsets)-1)]
}

// RuneOffset converts a byte offset of Text() into a character offset. Byte
// offsets inside a multi-byte character round up to the next character.
func (p PageText) RuneOffset(byteOffset int) int {
	if len(p.offsets) == 0 {
		return 0
	}
	return sort.SearchInts(p.offsets, byteOffset)
}

// Validate checks that every run's text sits at its start offset in the page
// buffer. It returns the index of the first bad run, or -1.
func (p PageText) Validate() int {
	next := 0
	for i, r := range p.runs {
		if r.StartOffset() != next || p.Slice(r.StartOffset(), r.EndOffset()) != r.Text() {
			return i
		}
		next = r.EndOffset()
	}
	if next != p.Len() {
		return len(p.runs)
	}
	return -1
}
