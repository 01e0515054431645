// Package dom classifies parsed HTML nodes and reads their text and attributes.
//
// The tree comes from golang.org/x/net/html and is treated as read-only:
// nothing in this package mutates a node.
package dom

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind is the closed set of node categories the renderer dispatches on.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindIgnored
	KindBody
	KindHeading
	KindParagraph
	KindContainer
	KindList
	KindListItem
	KindTable
	KindQuote
	KindImage
	KindCodeBlock
	KindRule
	KindBold
	KindItalic
	KindUnderline
	KindCode
	KindMark
	KindLink
	KindBreak
	KindInline
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindText:      "text",
	KindIgnored:   "ignored",
	KindBody:      "body",
	KindHeading:   "heading",
	KindParagraph: "paragraph",
	KindContainer: "container",
	KindList:      "list",
	KindListItem:  "list-item",
	KindTable:     "table",
	KindQuote:     "quote",
	KindImage:     "image",
	KindCodeBlock: "code-block",
	KindRule:      "rule",
	KindBold:      "bold",
	KindItalic:    "italic",
	KindUnderline: "underline",
	KindCode:      "code",
	KindMark:      "mark",
	KindLink:      "link",
	KindBreak:     "break",
	KindInline:    "inline",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

var elementKinds = map[atom.Atom]Kind{
	atom.Body: KindBody,

	atom.H1: KindHeading,
	atom.H2: KindHeading,
	atom.H3: KindHeading,
	atom.H4: KindHeading,
	atom.H5: KindHeading,
	atom.H6: KindHeading,

	atom.P: KindParagraph,

	atom.Div:        KindContainer,
	atom.Article:    KindContainer,
	atom.Aside:      KindContainer,
	atom.Canvas:     KindContainer,
	atom.Details:    KindContainer,
	atom.Figcaption: KindContainer,
	atom.Figure:     KindContainer,
	atom.Footer:     KindContainer,
	atom.Header:     KindContainer,
	atom.Main:       KindContainer,
	atom.Nav:        KindContainer,
	atom.Section:    KindContainer,
	atom.Summary:    KindContainer,
	atom.Video:      KindContainer,
	atom.Form:       KindContainer,
	atom.Menu:       KindContainer,

	atom.Ul: KindList,
	atom.Ol: KindList,
	atom.Li: KindListItem,

	atom.Table:      KindTable,
	atom.Blockquote: KindQuote,
	atom.Img:        KindImage,
	atom.Pre:        KindCodeBlock,
	atom.Hr:         KindRule,

	atom.B:      KindBold,
	atom.Strong: KindBold,
	atom.I:      KindItalic,
	atom.Em:     KindItalic,
	atom.U:      KindUnderline,
	atom.Code:   KindCode,
	atom.Mark:   KindMark,
	atom.A:      KindLink,
	atom.Br:     KindBreak,

	atom.Span:   KindInline,
	atom.Del:    KindInline,
	atom.S:      KindInline,
	atom.Sub:    KindInline,
	atom.Sup:    KindInline,
	atom.Small:  KindInline,
	atom.Abbr:   KindInline,
	atom.Cite:   KindInline,
	atom.Kbd:    KindInline,
	atom.Samp:   KindInline,
	atom.Var:    KindInline,
	atom.Ins:    KindInline,
	atom.Q:      KindInline,
	atom.Label:  KindInline,
	atom.Time:   KindInline,
	atom.Strike: KindInline,

	atom.Head:     KindIgnored,
	atom.Script:   KindIgnored,
	atom.Style:    KindIgnored,
	atom.Template: KindIgnored,
	atom.Input:    KindIgnored,
	atom.Meta:     KindIgnored,
	atom.Link:     KindIgnored,
	atom.Title:    KindIgnored,
}

// blockAtoms lists the elements treated as block-level when they appear
// inside inline content. img is inline here; containers holding nothing
// but images place them as blocks (see SoleImage).
var blockAtoms = map[atom.Atom]bool{
	atom.Body: true, atom.P: true, atom.Div: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Table: true, atom.Blockquote: true, atom.Pre: true,
	atom.Article: true, atom.Aside: true, atom.Canvas: true, atom.Details: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.Header: true,
	atom.Hr: true, atom.Main: true, atom.Nav: true, atom.Section: true, atom.Summary: true,
	atom.Video: true, atom.Form: true, atom.Menu: true,
}

// Classify returns the Kind of n. Elements outside the known set map to
// KindUnknown; comments and doctypes map to KindIgnored.
func Classify(n *html.Node) Kind {
	if n == nil {
		return KindIgnored
	}
	switch n.Type {
	case html.TextNode:
		return KindText
	case html.ElementNode:
		if k, ok := elementKinds[n.DataAtom]; ok {
			return k
		}
		return KindUnknown
	default:
		return KindIgnored
	}
}

// IsBlock reports whether n is a block-level element.
func IsBlock(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && blockAtoms[n.DataAtom]
}

// IsElement reports whether n is an element with the given tag.
func IsElement(n *html.Node, a atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == a
}

// HeadingLevel returns 1-6 for h1-h6 and 0 for anything else.
func HeadingLevel(n *html.Node) int {
	if n == nil || n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}
