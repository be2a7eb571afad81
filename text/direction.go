package text

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// Direction represents the writing direction of a text run.
type Direction int

const (
	// LTR (Left-to-Right) for Latin, Cyrillic, CJK, etc.
	LTR Direction = iota
	// RTL (Right-to-Left) for Arabic, Hebrew, etc.
	RTL
)

// String returns the direction in extraction wire form ("ltr" or "rtl").
func (d Direction) String() string {
	if d == RTL {
		return "rtl"
	}
	return "ltr"
}

// ParseDirection converts an extraction "dir" value. Anything other than
// "rtl" (including "ttb" and "") is LTR; callers that need detection for
// missing values use DetectDirection.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "rtl") {
		return RTL
	}
	return LTR
}

// DetectDirection returns the dominant direction of a string based on the
// Unicode bidi class of its strong characters. Strings without strong
// characters (digits, punctuation, spaces) are LTR.
func DetectDirection(s string) Direction {
	ltr, rtl := 0, 0
	for _, r := range s {
		switch charDirection(r) {
		case bidi.L:
			ltr++
		case bidi.R, bidi.AL:
			rtl++
		}
	}
	if rtl > ltr {
		return RTL
	}
	return LTR
}

func charDirection(r rune) bidi.Class {
	p, _ := bidi.LookupRune(r)
	return p.Class()
}
