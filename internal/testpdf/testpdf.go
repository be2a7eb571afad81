// Package testpdf writes small, valid PDF files for tests.
package testpdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Page describes one page. Dict is spliced into the page dictionary
// (for example "/MediaBox [0 0 612 792] /Rotate 90"); Stream is the
// content stream. Font /F1 is Helvetica with every printable ASCII glyph
// 500 units wide.
type Page struct {
	Dict   string
	Stream string
}

// Build returns a PDF whose page tree node carries pagesDict (for inherited
// attributes such as /MediaBox or /Rotate) and holds pages in order.
func Build(pagesDict string, pages ...Page) []byte {
	var b strings.Builder
	offsets := map[int]int{}
	obj := func(n int, body string) {
		offsets[n] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	b.WriteString("%PDF-1.4\n")

	// 1 catalog, 2 page tree, 3 font, then a page and its stream per page.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d %s >>", strings.Join(kids, " "), len(pages), pagesDict))

	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = "500"
	}
	obj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /FirstChar 32 /LastChar 126 /Widths ["+
		strings.Join(widths, " ")+"] >>")

	for i, p := range pages {
		pageNum := 4 + 2*i
		obj(pageNum, fmt.Sprintf("<< /Type /Page /Parent 2 0 R %s /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>",
			p.Dict, pageNum+1))

		stream := p.Stream
		if !strings.HasSuffix(stream, "\n") {
			stream += "\n"
		}
		obj(pageNum+1, "<< /Length "+strconv.Itoa(len(stream))+" >>\nstream\n"+stream+"endstream")
	}

	size := 4 + 2*len(pages)
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", size)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i < size; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Root 1 0 R /Size %d >>\nstartxref\n%d\n%%%%EOF\n", size, xref)

	return []byte(b.String())
}

// Text returns a content stream showing s at (x, y) in /F1 at size.
func Text(s string, size, x, y float64) string {
	return fmt.Sprintf("BT /F1 %g Tf 1 0 0 1 %g %g Tm (%s) Tj ET\n", size, x, y, s)
}

// Write builds a PDF into a temporary directory and returns its path
func Write(t testing.TB, name, pagesDict string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, Build(pagesDict, pages...), 0o644); err != nil {
		t.Fatalf("write test pdf: %v", err)
	}
	return path
}
