package search

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tsawler/pdfview/text"
)

// MatchOptions controls how much surrounding text a result carries.
type MatchOptions struct {
	// ContextBefore is the number of characters kept before a match.
	ContextBefore int
	// ContextAfter is the number of characters kept after a match.
	ContextAfter int
}

// DefaultMatchOptions keeps up to 10 characters before a match and none
// after it.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{ContextBefore: 10, ContextAfter: 0}
}

// Find scans pages in order for case-insensitive literal occurrences of
// query. Within a page, each scan resumes at the end of the previous match,
// so matches never overlap. The returned slice is never nil.
//
// Matching compares Unicode case folds character by character. Nothing else
// is folded: ignorable characters, widths and normalization forms must match
// exactly.
//
// ctx is checked before each page; a cancelled scan returns ctx.Err().
func Find(ctx context.Context, pages []text.PageText, query string, opts MatchOptions) ([]Result, error) {
	results := []Result{}
	if query == "" {
		return results, nil
	}

	fold := cases.Fold()
	needle := fold.String(query)

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = findInPage(results, page, newFoldedText(fold, page.Text()), needle, opts)
	}
	return results, nil
}

// foldedText is the case fold of a page text. starts[i] is the byte offset
// in folded of the fold of character i; starts[n] is len(folded).
type foldedText struct {
	folded string
	starts []int
}

func newFoldedText(fold cases.Caser, s string) foldedText {
	var sb strings.Builder
	starts := make([]int, 0, len(s)+1)
	for _, r := range s {
		starts = append(starts, sb.Len())
		sb.WriteString(fold.String(string(r)))
	}
	starts = append(starts, sb.Len())
	return foldedText{folded: sb.String(), starts: starts}
}

// char returns the character whose fold starts at byte offset b
func (f foldedText) char(b int) (int, bool) {
	i := sort.SearchInts(f.starts, b)
	return i, i < len(f.starts) && f.starts[i] == b
}

func findInPage(results []Result, page text.PageText, ft foldedText, needle string, opts MatchOptions) []Result {
	from := 0
	for from < len(ft.folded) {
		i := strings.Index(ft.folded[from:], needle)
		if i < 0 {
			break
		}
		s, e := from+i, from+i+len(needle)

		// A match must cover whole characters of the page text.
		start, okStart := ft.char(s)
		end, okEnd := ft.char(e)
		if !okStart || !okEnd || end <= start {
			from = s + 1
			continue
		}

		results = append(results, newResult(page, start, end, opts))
		from = e
	}
	return results
}

// newResult builds the result for the characters [start, end) of page
func newResult(page text.PageText, start, end int, opts MatchOptions) Result {
	ctxStart := max(0, start-max(0, opts.ContextBefore))
	ctxEnd := min(page.Len(), end+max(0, opts.ContextAfter))

	return Result{
		Page:          page.Number(),
		Context:       page.Slice(ctxStart, ctxEnd),
		MatchStart:    start - ctxStart,
		MatchEnd:      end - ctxStart,
		StartPosition: start,
		EndPosition:   end,
		Parts:         matchParts(page, start, end),
	}
}

// matchParts returns one part per run overlapping [start, end), bounded to
// the characters of the run inside the match.
func matchParts(page text.PageText, start, end int) []ResultPart {
	parts := []ResultPart{}

	for i := 0; i < page.NumRuns(); i++ {
		run := page.Run(i)
		if run.Len() == 0 || run.EndOffset() <= start {
			continue
		}
		if run.StartOffset() >= end {
			break
		}

		from := max(start, run.StartOffset()) - run.StartOffset()
		to := min(end, run.EndOffset()) - run.StartOffset()
		startX, endX, approx := run.GlyphSpan(from, to)

		parts = append(parts, ResultPart{
			StartX:      startX,
			EndX:        endX,
			Width:       run.Width(),
			Height:      run.Height(),
			Transform:   run.Transform(),
			Approximate: approx,
		})
	}
	return parts
}
