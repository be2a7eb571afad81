// Package search finds text in the pages of a document and maps each match
// back to the glyph rectangles of the runs it covers.
//
// [Find] is the pure matching step: a case-insensitive literal scan over
// page text. [Engine] wraps it with on-demand text extraction, a serial work
// queue and cancellation, delivering results through a [Dispatcher]:
//
//	engine := search.NewEngine("report.pdf", search.Config{Extractor: adapter})
//	defer engine.Close()
//
//	engine.Search("quick", func(query string, results []search.Result, err error) {
//		fmt.Println(search.Summary(results))
//	})
package search
