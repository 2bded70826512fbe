// Package text supplies minimum node dimensions derived from label text.
//
// Real font metrics live outside the layout core; the Measurer interface is
// the seam where an SVG or canvas host plugs in exact measurement. The
// default implementation approximates per-rune advance widths, which is
// deterministic and good enough for layout spacing decisions.
package text

import (
	"strings"
	"unicode"
)

// Font carries the measurement-relevant font parameters.
type Font struct {
	Size   float64 // Point size; 0 means DefaultSize
	Family string  // Informational; the approximate measurer ignores it
}

// Size is a measured text extent.
type Size struct {
	Width  float64
	Height float64
}

// Measurer computes the extent of a text label in a given font.
// Implementations must be safe for concurrent use.
type Measurer interface {
	Measure(text string, font Font) Size
}

// Default measurement constants, tuned for a typical sans-serif face.
const (
	DefaultSize = 14.0

	// advance ratios relative to font size
	narrowRatio = 0.35 // i, l, punctuation
	wideRatio   = 0.85 // m, w, CJK and other wide runes
	meanRatio   = 0.60 // everything else

	lineHeightRatio = 1.4
)

// Approximate is a Measurer that estimates extents from per-rune advance
// ratios. Multi-line labels (split on '\n') measure as the widest line
// times the line count's height.
type Approximate struct{}

// NewApproximate returns the default approximate measurer.
func NewApproximate() Approximate { return Approximate{} }

// Measure implements Measurer.
func (Approximate) Measure(text string, font Font) Size {
	size := font.Size
	if size <= 0 {
		size = DefaultSize
	}

	lines := strings.Split(text, "\n")
	maxWidth := 0.0
	for _, line := range lines {
		if w := lineWidth(line, size); w > maxWidth {
			maxWidth = w
		}
	}

	return Size{
		Width:  maxWidth,
		Height: float64(len(lines)) * size * lineHeightRatio,
	}
}

func lineWidth(line string, size float64) float64 {
	width := 0.0
	for _, r := range line {
		switch {
		case isNarrow(r):
			width += size * narrowRatio
		case isWide(r):
			width += size * wideRatio
		default:
			width += size * meanRatio
		}
	}
	return width
}

func isNarrow(r rune) bool {
	switch r {
	case 'i', 'j', 'l', 't', 'f', 'I', '.', ',', ':', ';', '\'', '|', '!', ' ':
		return true
	}
	return false
}

func isWide(r rune) bool {
	switch r {
	case 'm', 'w', 'M', 'W', '@':
		return true
	}
	return unicode.In(r, unicode.Han, unicode.Hangul, unicode.Hiragana, unicode.Katakana)
}

// Fixed is a Measurer returning the same size for every label. Useful in
// tests and for callers that size nodes externally.
type Fixed struct {
	Size Size
}

// Measure implements Measurer.
func (f Fixed) Measure(string, Font) Size { return f.Size }
