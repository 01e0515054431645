package render

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2office/internal/dom"
)

// emitInline appends n to the paragraph behind s with formatting f.
func (w *Walker) emitInline(ctx context.Context, n *html.Node, s *sink, f Formatting) {
	switch dom.Classify(n) {
	case dom.KindIgnored:
		return

	case dom.KindText:
		if dom.IsBlank(n.Data) {
			return
		}
		s.paragraph().AddText(inlineText(n.Data), f)

	case dom.KindBold:
		w.emitChildren(ctx, n, s, f.WithBold())

	case dom.KindItalic:
		w.emitChildren(ctx, n, s, f.WithItalic())

	case dom.KindUnderline:
		w.emitChildren(ctx, n, s, f.WithUnderline())

	case dom.KindCode:
		// Inline code is marked with an underline, not a typeface change.
		w.emitChildren(ctx, n, s, f.WithUnderline())

	case dom.KindMark:
		w.emitChildren(ctx, n, s, f.WithHighlight())

	case dom.KindLink:
		w.emitLink(ctx, n, s, f)

	case dom.KindImage:
		w.emitInlineImage(ctx, n, s, f)

	case dom.KindBreak:
		if s.flat {
			s.paragraph().AddText(" ", f)
			return
		}
		s.split()

	case dom.KindTable:
		if s.flat {
			w.emitChildren(ctx, n, s, f)
			return
		}
		s.split()
		w.emitTable(ctx, n, f)

	default:
		if dom.IsBlock(n) && !s.flat {
			s.split()
			w.emitBlock(ctx, n, f)
			return
		}
		w.emitChildren(ctx, n, s, f)
	}
}

func (w *Walker) emitChildren(ctx context.Context, n *html.Node, s *sink, f Formatting) {
	for c := range n.ChildNodes() {
		w.emitInline(ctx, c, s, f)
	}
}

// emitLink emits a hyperlink: a clickable picture when the anchor holds
// nothing but an image, styled clickable text otherwise.
func (w *Walker) emitLink(ctx context.Context, a *html.Node, s *sink, f Formatting) {
	href := dom.Attr(a, "href")

	if img := dom.SoleImage(a); img != nil {
		src := dom.Attr(img, "src")
		resolved, err := w.resolveImage(ctx, src)
		if err == nil {
			defer w.release(resolved)
			err = s.paragraph().AddLinkedImage(resolved, href)
		}
		if err != nil {
			s.paragraph().AddText(Placeholder(err, src), f)
		}
		return
	}

	text := dom.StrippedText(a)
	if text == "" {
		return
	}
	if href == "" {
		s.paragraph().AddText(text, f)
		return
	}
	s.paragraph().AddLink(text, href, f.WithColor(LinkColor).WithUnderline())
}

// emitInlineImage places an image inside the current paragraph.
func (w *Walker) emitInlineImage(ctx context.Context, n *html.Node, s *sink, f Formatting) {
	src := dom.Attr(n, "src")
	if src == "" {
		return
	}

	img, err := w.resolveImage(ctx, src)
	if err == nil {
		defer w.release(img)
		err = s.paragraph().AddImage(img, dom.Attr(n, "alt"))
	}
	if err != nil {
		s.paragraph().AddText(Placeholder(err, src), f)
	}
}

// inlineText folds line breaks inside a text node into spaces; soft
// breaks in the source do not start new lines.
func inlineText(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
