// Package text provides the searchable text model of a document page.
//
// A text extraction service reports each page as an ordered list of
// positioned items ([RawItem]). [NewPageText] turns them into a [PageText]:
// a single concatenated buffer plus the [TextRun] values that produced it,
// each knowing its start offset in the buffer.
//
//	pages := text.BuildPages(raw)
//	for _, p := range pages {
//	    fmt.Println(p.Number(), p.Text())
//	}
//
// # Offsets
//
// All offsets are character (rune) offsets. For every run,
// p.Slice(run.StartOffset(), run.EndOffset()) == run.Text() and the runs
// tile the buffer without gaps.
//
// # Glyph geometry
//
// [TextRun.GlyphSpan] accumulates the per-glyph widths of a run to locate a
// character range horizontally in text space. When the extractor did not
// report glyph widths the run width is spread uniformly over its characters
// and the span is flagged as approximate.
//
// # Degraded input
//
// Missing transforms default to the identity matrix, missing or mismatched
// glyph width tables are dropped and a missing direction is detected from
// the text itself with [DetectDirection].
package text
