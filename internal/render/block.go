package render

import (
	"context"
	"strconv"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-md2office/internal/dom"
)

// emitBlock dispatches a block-level node. f carries formatting inherited
// from an enclosing container such as a blockquote.
func (w *Walker) emitBlock(ctx context.Context, n *html.Node, f Formatting) {
	switch dom.Classify(n) {
	case dom.KindIgnored:
		return

	case dom.KindText:
		if dom.IsBlank(n.Data) {
			return
		}
		style := ParagraphStyle{Kind: BlockFallback, TextLen: utf8.RuneCountInString(n.Data)}
		w.newSink(style).paragraph().AddText(inlineText(n.Data), f)

	case dom.KindHeading:
		style := ParagraphStyle{
			Kind:  BlockHeading,
			Level: dom.HeadingLevel(n),
			Align: containerAlign(n),
		}
		w.emitMixed(ctx, n, w.newSink(style), f)

	case dom.KindParagraph, dom.KindContainer, dom.KindBody, dom.KindListItem:
		if w.paginate(n) {
			return
		}
		style := ParagraphStyle{Kind: BlockParagraph, Align: containerAlign(n)}
		w.emitMixed(ctx, n, w.newSink(style), f)

	case dom.KindQuote:
		style := ParagraphStyle{Kind: BlockQuote, Align: containerAlign(n)}
		w.emitMixed(ctx, n, w.newSink(style), f.WithItalic())

	case dom.KindList:
		w.emitList(ctx, n, 0, f)

	case dom.KindTable:
		w.emitTable(ctx, n, f)

	case dom.KindImage:
		w.emitBlockImage(ctx, n, f)

	case dom.KindCodeBlock:
		w.emitCode(n, f)

	case dom.KindRule:
		w.backend.AddRule()

	default:
		style := ParagraphStyle{Kind: BlockFallback, TextLen: utf8.RuneCountInString(dom.Text(n))}
		w.emitInline(ctx, n, w.newSink(style), f)
	}
}

// emitMixed routes the children of a container: block children start new
// containers, everything else flows into s. Images are blocks only when
// the container holds no text.
func (w *Walker) emitMixed(ctx context.Context, n *html.Node, s *sink, f Formatting) {
	imageOnly := dom.SoleImage(n) != nil
	for c := range n.ChildNodes() {
		block := dom.IsBlock(c) || (imageOnly && dom.IsElement(c, atom.Img))
		if block && !s.flat {
			s.split()
			w.emitBlock(ctx, c, f)
			continue
		}
		w.emitInline(ctx, c, s, f)
	}
}

// paginate spreads an oversized paragraph over pages when the backend
// asks for it. It reports whether n was consumed.
func (w *Walker) paginate(n *html.Node) bool {
	if !dom.IsElement(n, atom.P) && !dom.IsElement(n, atom.Div) {
		return false
	}
	chunks := w.backend.Paginate(dom.Text(n))
	if len(chunks) == 0 {
		return false
	}
	for _, chunk := range chunks {
		w.backend.AddPage(chunk)
	}
	return true
}

// emitList emits one paragraph per direct li child. Nested lists recurse
// one level deeper.
func (w *Walker) emitList(ctx context.Context, list *html.Node, depth int, f Formatting) {
	ordered := dom.IsElement(list, atom.Ol)
	index := 1
	if start, err := strconv.Atoi(dom.Attr(list, "start")); err == nil && ordered {
		index = start
	}
	textLen := utf8.RuneCountInString(dom.Text(list))

	for li := range list.ChildNodes() {
		if !dom.IsElement(li, atom.Li) {
			continue
		}
		s := w.newSink(ParagraphStyle{
			Kind:    BlockListItem,
			Level:   depth,
			Ordered: ordered,
			Index:   index,
			TextLen: textLen,
		})
		index++
		w.emitListItem(ctx, li, s, depth, f)
	}
}

func (w *Walker) emitListItem(ctx context.Context, li *html.Node, s *sink, depth int, f Formatting) {
	for c := range li.ChildNodes() {
		switch dom.Classify(c) {
		case dom.KindList:
			s.split()
			w.emitList(ctx, c, depth+1, f)
		case dom.KindParagraph:
			// Loose list items wrap their text in <p>.
			for gc := range c.ChildNodes() {
				w.emitInline(ctx, gc, s, f)
			}
		default:
			w.emitInline(ctx, c, s, f)
		}
	}
}

// emitBlockImage places an image as a block, or a placeholder paragraph
// when it cannot be resolved.
func (w *Walker) emitBlockImage(ctx context.Context, n *html.Node, f Formatting) {
	src := dom.Attr(n, "src")
	if src == "" {
		return
	}
	alt := dom.Attr(n, "alt")

	img, err := w.resolveImage(ctx, src)
	if err == nil {
		defer w.release(img)
		err = w.backend.AddImage(img, alt)
		if err != nil {
			w.logger.Warn("image not embedded", "src", src, "error", err)
		}
	}
	if err != nil {
		text := Placeholder(err, src)
		style := ParagraphStyle{Kind: BlockFallback, TextLen: utf8.RuneCountInString(text)}
		w.newSink(style).paragraph().AddText(text, f)
	}
}

// containerAlign honors align="center" on headings and containers.
func containerAlign(n *html.Node) Alignment {
	if dom.Centered(n) {
		return AlignCenter
	}
	return AlignLeft
}
