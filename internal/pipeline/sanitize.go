package pipeline

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// styleValue admits plain declarations such as text-align:center; or
	// color:#d73a49 and rejects anything with parentheses (url(), expression()).
	styleValue = regexp.MustCompile(`^[a-zA-Z0-9\s:;#.%-]*$`)
	alignValue = regexp.MustCompile(`^(?i)(left|center|right|justify)$`)
)

// newSanitizer allows what the document walker understands on top of the
// user-generated-content baseline: alignment, inline color styles, list
// start numbers, highlights and local or embedded image sources.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	p.AllowURLSchemes("mailto", "http", "https", "file")
	p.AllowElements("mark", "u", "del", "s", "nav")
	p.AllowAttrs("align").Matching(alignValue).OnElements(
		"p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "td", "th",
	)
	p.AllowAttrs("style").Matching(styleValue).OnElements(
		"p", "div", "span", "pre", "code", "td", "th",
	)
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	return p
}
