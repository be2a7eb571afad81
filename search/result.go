package search

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/pdfview/model"
)

// ResultPart is the glyph rectangle of one text run that overlaps a match.
// StartX and EndX are offsets along the run in text-space units; Width,
// Height and Transform are copied from the run.
type ResultPart struct {
	StartX      float64      `json:"startX"`
	EndX        float64      `json:"endX"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Transform   model.Matrix `json:"transform"`
	Approximate bool         `json:"approximate,omitempty"`
}

// Result is one match of a query on a page.
//
// Context holds a few characters before the match followed by the match
// itself; MatchStart and MatchEnd locate the match inside Context.
// StartPosition and EndPosition are character offsets into the page text.
type Result struct {
	Page          int          `json:"page"`
	Context       string       `json:"context"`
	MatchStart    int          `json:"matchStart"`
	MatchEnd      int          `json:"matchEnd"`
	StartPosition int          `json:"startPosition"`
	EndPosition   int          `json:"endPosition"`
	Parts         []ResultPart `json:"parts"`
}

// Equal reports whether two results are structurally identical
func (r Result) Equal(o Result) bool {
	if r.Page != o.Page || r.Context != o.Context ||
		r.MatchStart != o.MatchStart || r.MatchEnd != o.MatchEnd ||
		r.StartPosition != o.StartPosition || r.EndPosition != o.EndPosition ||
		len(r.Parts) != len(o.Parts) {
		return false
	}
	for i := range r.Parts {
		if r.Parts[i] != o.Parts[i] {
			return false
		}
	}
	return true
}

// EqualResults reports whether two result lists are structurally identical
func EqualResults(a, b []Result) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// split returns the context before, inside and after the match
func (r Result) split() (before, match, after string) {
	runes := []rune(r.Context)
	s := clamp(r.MatchStart, 0, len(runes))
	e := clamp(r.MatchEnd, s, len(runes))
	return string(runes[:s]), string(runes[s:e]), string(runes[e:])
}

// Match returns the matched text as it appears on the page
func (r Result) Match() string {
	_, m, _ := r.split()
	return m
}

// HTMLSnippet renders the context as HTML with the match in bold. Page text
// is escaped.
func (r Result) HTMLSnippet() string {
	before, match, after := r.split()

	bold := &html.Node{Type: html.ElementNode, Data: "b", DataAtom: atom.B}
	bold.AppendChild(&html.Node{Type: html.TextNode, Data: match})

	var buf bytes.Buffer
	for _, n := range []*html.Node{
		{Type: html.TextNode, Data: before},
		bold,
		{Type: html.TextNode, Data: after},
	} {
		if err := html.Render(&buf, n); err != nil {
			return html.EscapeString(r.Context)
		}
	}
	return buf.String()
}

// Summary describes a result count for display
func Summary(results []Result) string {
	switch len(results) {
	case 0:
		return "No results"
	case 1:
		return "1 result"
	default:
		return fmt.Sprintf("%d results", len(results))
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
