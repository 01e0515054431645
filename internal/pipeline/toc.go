package pipeline

import (
	"context"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Default heading range listed by the table of contents.
const (
	DefaultTOCMinDepth = 1
	DefaultTOCMaxDepth = 3
)

// TOCInjector defines the contract for TOC expansion in HTML.
type TOCInjector interface {
	InjectTOC(ctx context.Context, htmlContent string) (string, error)
}

// headingInfo represents an extracted heading from HTML.
type headingInfo struct {
	Level int    // 1-6
	ID    string // anchor ID
	Text  string // heading text content
}

var (
	// headingPattern captures level, id and inner HTML of h1-h6 tags with an id.
	headingPattern = regexp.MustCompile(`(?is)<h([1-6])[^>]*\bid="([^"]*)"[^>]*>(.*?)</h[1-6]>`)

	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

	// tocDirective is a paragraph holding nothing but [TOC].
	tocDirective = regexp.MustCompile(`(?i)<p>\s*\[TOC\]\s*</p>`)
)

// stripHTMLTags removes tags, decodes entities and trims whitespace.
func stripHTMLTags(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// extractHeadings returns headings between minDepth and maxDepth.
// Headings without IDs are skipped.
func extractHeadings(htmlContent string, minDepth, maxDepth int) []headingInfo {
	matches := headingPattern.FindAllStringSubmatch(htmlContent, -1)
	if len(matches) == 0 {
		return nil
	}

	var headings []headingInfo
	for _, m := range matches {
		level, _ := strconv.Atoi(m[1])
		if level < minDepth || level > maxDepth {
			continue
		}
		headings = append(headings, headingInfo{
			Level: level,
			ID:    m[2],
			Text:  stripHTMLTags(m[3]),
		})
	}
	return headings
}

// numberingState tracks hierarchical numbering for TOC entries.
// The first heading seen becomes depth 1 and skipped levels collapse.
type numberingState struct {
	counters     [6]int
	minLevelSeen int
	lastLevel    int
}

func newNumberingState() *numberingState {
	return &numberingState{}
}

// next returns the number string ("1.2.") and effective depth for a
// heading at level.
func (n *numberingState) next(level int) (numStr string, effectiveDepth int) {
	if n.minLevelSeen == 0 {
		n.minLevelSeen = level
	}

	effectiveDepth = max(level-n.minLevelSeen+1, 1)

	// H1 -> H3 becomes depth 1 -> depth 2.
	if n.lastLevel > 0 && effectiveDepth > n.lastLevel+1 {
		effectiveDepth = n.lastLevel + 1
	}

	for i := effectiveDepth; i < 6; i++ {
		n.counters[i] = 0
	}
	n.counters[effectiveDepth-1]++
	n.lastLevel = effectiveDepth

	parts := make([]string, effectiveDepth)
	for i := range effectiveDepth {
		parts[i] = strconv.Itoa(n.counters[i])
	}
	return strings.Join(parts, ".") + ".", effectiveDepth
}

// generateNumberedTOC renders one block per entry, each an internal link
// labelled with its number. Nesting is expressed by the number alone.
func generateNumberedTOC(headings []headingInfo) string {
	if len(headings) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="toc">`)

	numbering := newNumberingState()
	for _, h := range headings {
		num, _ := numbering.next(h.Level)
		buf.WriteString(`<div class="toc-item"><a href="#`)
		buf.WriteString(html.EscapeString(h.ID))
		buf.WriteString(`">`)
		buf.WriteString(num)
		buf.WriteString(` `)
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString(`</a></div>`)
	}

	buf.WriteString(`</nav>`)
	return buf.String()
}

// TOCInjection replaces [TOC] paragraphs with a numbered table of contents.
type TOCInjection struct {
	MinDepth int
	MaxDepth int
}

// NewTOCInjection creates a TOC injector listing h1 to h3.
func NewTOCInjection() *TOCInjection {
	return &TOCInjection{MinDepth: DefaultTOCMinDepth, MaxDepth: DefaultTOCMaxDepth}
}

// InjectTOC expands every [TOC] directive. Without headings in range the
// directives are removed.
func (t *TOCInjection) InjectTOC(ctx context.Context, htmlContent string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if !tocDirective.MatchString(htmlContent) {
		return htmlContent, nil
	}

	toc := generateNumberedTOC(extractHeadings(htmlContent, t.MinDepth, t.MaxDepth))
	return tocDirective.ReplaceAllLiteralString(htmlContent, toc), nil
}
