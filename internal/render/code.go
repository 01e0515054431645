package render

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2office/internal/dom"
)

// spanColor extracts the foreground color from a highlighter's inline style.
var spanColor = regexp.MustCompile(`(?:^|;)\s*color:\s*#([0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)

type codeSegment struct {
	text  string
	color string
}

// emitCode writes a preformatted block as one monospace paragraph per
// source line. Colors from syntax-highlighted spans carry into the runs.
func (w *Walker) emitCode(pre *html.Node, f Formatting) {
	var segs []codeSegment
	collectCode(pre, "", &segs)

	lines := splitCodeLines(segs)
	for len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}

	base := f.WithMonospace()
	for _, line := range lines {
		p := w.backend.AddParagraph(ParagraphStyle{Kind: BlockCode})
		for _, seg := range line {
			if seg.text == "" {
				continue
			}
			p.AddText(seg.text, base.WithColor(seg.color))
		}
	}
}

func collectCode(n *html.Node, color string, out *[]codeSegment) {
	for c := range n.ChildNodes() {
		switch c.Type {
		case html.TextNode:
			*out = append(*out, codeSegment{text: c.Data, color: color})
		case html.ElementNode:
			childColor := color
			if m := spanColor.FindStringSubmatch(dom.Attr(c, "style")); m != nil {
				childColor = expandHex(m[1])
			}
			collectCode(c, childColor, out)
		}
	}
}

// splitCodeLines breaks segments at newlines.
func splitCodeLines(segs []codeSegment) [][]codeSegment {
	lines := [][]codeSegment{nil}
	for _, seg := range segs {
		parts := strings.Split(strings.ReplaceAll(seg.text, "\r\n", "\n"), "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part != "" {
				last := len(lines) - 1
				lines[last] = append(lines[last], codeSegment{text: part, color: seg.color})
			}
		}
	}
	return lines
}

// expandHex turns "abc" into "AABBCC" and upper-cases six-digit values.
func expandHex(h string) string {
	h = strings.ToUpper(h)
	if len(h) == 3 {
		return string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	return h
}
