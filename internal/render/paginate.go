package render

import (
	"strings"
	"unicode/utf8"
)

// Slide pagination defaults.
const (
	DefaultMaxChars     = 800
	DefaultBaseFontSize = 36
	DefaultMinFontSize  = 8
)

// Paginator splits long text into page-sized chunks and sizes their font.
// Lengths are counted in runes.
type Paginator struct {
	MaxChars     int
	BaseFontSize int
	MinFontSize  int
}

// DefaultPaginator returns the 800-character, 36pt/8pt paginator.
func DefaultPaginator() Paginator {
	return Paginator{
		MaxChars:     DefaultMaxChars,
		BaseFontSize: DefaultBaseFontSize,
		MinFontSize:  DefaultMinFontSize,
	}
}

// Overflows reports whether text is longer than one page.
func (p Paginator) Overflows(text string) bool {
	return utf8.RuneCountInString(text) > p.MaxChars
}

// Split breaks text on whitespace into chunks of at most MaxChars runes.
// Words are never cut: a word joins the current chunk unless the chunk
// (with its trailing space) plus the word plus one would exceed MaxChars.
// A word longer than MaxChars forms a chunk of its own. Empty chunks are
// never returned.
func (p Paginator) Split(text string) []string {
	var (
		chunks  []string
		current strings.Builder
		length  int
	)

	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		length = 0
	}

	for _, word := range strings.Fields(text) {
		n := utf8.RuneCountInString(word)
		if length+n+1 > p.MaxChars {
			flush()
		}
		current.WriteString(word)
		current.WriteByte(' ')
		length += n + 1
	}
	flush()
	return chunks
}

// FontSize returns the point size for a text of n runes:
// BaseFontSize * MaxChars / n, clamped to [MinFontSize, BaseFontSize].
// Empty text gets MinFontSize.
func (p Paginator) FontSize(n int) int {
	if n <= 0 {
		return p.MinFontSize
	}
	size := p.BaseFontSize * p.MaxChars / n
	return max(p.MinFontSize, min(size, p.BaseFontSize))
}
