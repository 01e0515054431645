package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr returns the value of the attribute key, or "" when absent.
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Centered reports whether n carries align="center".
func Centered(n *html.Node) bool {
	return Attr(n, "align") == "center"
}

// IsBlank reports whether s contains only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Text returns the concatenated content of every text node below n.
func Text(n *html.Node) string {
	var b strings.Builder
	collectText(&b, n)
	return b.String()
}

func collectText(b *strings.Builder, n *html.Node) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := range n.ChildNodes() {
		collectText(b, c)
	}
}

// StrippedText joins every non-blank descendant string of n, each trimmed,
// with no separator.
func StrippedText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for d := range n.Descendants() {
		if d.Type != html.TextNode {
			continue
		}
		b.WriteString(strings.TrimSpace(d.Data))
	}
	return b.String()
}

// SoleImage returns the img element below n when it is the only meaningful
// content: at least one image and no non-blank text.
func SoleImage(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	var img *html.Node
	for d := range n.Descendants() {
		switch {
		case d.Type == html.TextNode && !IsBlank(d.Data):
			return nil
		case img == nil && IsElement(d, atom.Img):
			img = d
		}
	}
	return img
}

// Body returns the body element of a parsed document, or nil.
func Body(doc *html.Node) *html.Node {
	if IsElement(doc, atom.Body) {
		return doc
	}
	if doc == nil {
		return nil
	}
	for d := range doc.Descendants() {
		if IsElement(d, atom.Body) {
			return d
		}
	}
	return nil
}
