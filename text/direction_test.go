package text

import (
	"testing"
)

func TestDetectDirection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Direction
	}{
		{"empty", "", LTR},
		{"latin", "Hello world", LTR},
		{"cyrillic", "Привет", LTR},
		{"cjk", "中文", LTR},
		{"arabic", "مرحبا", RTL},
		{"hebrew", "שלום", RTL},
		{"digits only", "12345", LTR},
		{"punctuation only", "...!?", LTR},
		{"mostly arabic", "abc مرحبا بكم", RTL},
		{"mostly latin", "hello world ש", LTR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDirection(tt.text); got != tt.want {
				t.Errorf("DetectDirection(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"ltr", LTR},
		{"rtl", RTL},
		{"RTL", RTL},
		{" rtl ", RTL},
		{"ttb", LTR},
		{"", LTR},
	}

	for _, tt := range tests {
		if got := ParseDirection(tt.in); got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDirectionString(t *testing.T) {
	if LTR.String() != "ltr" {
		t.Errorf("LTR.String() = %q, want ltr", LTR.String())
	}
	if RTL.String() != "rtl" {
		t.Errorf("RTL.String() = %q, want rtl", RTL.String())
	}
}
