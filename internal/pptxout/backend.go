// Package pptxout renders the walker's output as a slide deck.
//
// Every top-level block gets its own slide, created when the block first
// produces content. Tables and pictures get slides of their own, and
// paragraphs too long for one slide are spread over several.
package pptxout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/alnah/go-md2office/internal/fileutil"
	"github.com/alnah/go-md2office/internal/imageres"
	"github.com/alnah/go-md2office/internal/pptx"
	"github.com/alnah/go-md2office/internal/render"
)

// Slide geometry.
var (
	margin        = pptx.Inches(0.5)
	textBoxHeight = pptx.Inches(5)
	tableHeight   = pptx.Inches(3)
	captionGap    = pptx.Inches(0.2)
	captionHeight = pptx.Inches(1)
)

// Run styling.
const (
	monospaceFont  = "Courier New"
	highlightColor = "FFFF00"
	headerFill     = "ADD8E6"
	bulletChar     = "•"
)

// Compile-time interface checks.
var (
	_ render.Backend   = (*Backend)(nil)
	_ render.Paragraph = (*paragraph)(nil)
	_ render.Table     = (*table)(nil)
)

// Backend builds a presentation.
type Backend struct {
	pres      *pptx.Presentation
	paginator render.Paginator
	logger    *slog.Logger

	// box is the text box of the current top-level block, nil until the
	// block emits text.
	box *pptx.TextBox
}

// Option configures a Backend.
type Option func(*Backend)

// WithFonts sets the Latin and East Asian typefaces.
func WithFonts(latin, eastAsian string) Option {
	return func(b *Backend) {
		if latin != "" {
			b.pres.LatinFont = latin
		}
		if eastAsian != "" {
			b.pres.EastAsianFont = eastAsian
		}
	}
}

// WithPaginator sets the slide text budget and font scaling.
func WithPaginator(p render.Paginator) Option {
	return func(b *Backend) {
		if p.MaxChars > 0 {
			b.paginator = p
		}
	}
}

// WithTitle sets the document title property.
func WithTitle(title string) Option {
	return func(b *Backend) {
		b.pres.Title = title
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates an empty A4 portrait deck.
func New(opts ...Option) *Backend {
	b := &Backend{
		pres:      pptx.New(),
		paginator: render.DefaultPaginator(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	b.pres.LatinFont = "Times New Roman"
	b.pres.Creator = "go-md2office"
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Presentation exposes the deck under construction.
func (b *Backend) Presentation() *pptx.Presentation { return b.pres }

func (b *Backend) contentWidth() pptx.EMU { return b.pres.Width - 2*margin }

// BeginBlock ends the current slide's text box.
func (b *Backend) BeginBlock() { b.box = nil }

func (b *Backend) textBox() *pptx.TextBox {
	if b.box == nil {
		b.box = b.pres.AddSlide().AddTextBox(margin, margin, b.contentWidth(), textBoxHeight)
	}
	return b.box
}

// AddParagraph opens a paragraph in the block's text box.
func (b *Backend) AddParagraph(style render.ParagraphStyle) render.Paragraph {
	p := b.textBox().AddParagraph()
	p.Align = alignment(style.Align)

	switch style.Kind {
	case render.BlockHeading:
		p.Size = max(40-(style.Level-1)*2, 20)
	case render.BlockListItem:
		p.Level = style.Level
		p.Size = b.paginator.FontSize(style.TextLen)
		if style.Ordered {
			p.Bullet = pptx.Bullet{Number: style.Index}
		} else {
			p.Bullet = pptx.Bullet{Char: bulletChar}
		}
	case render.BlockQuote:
		p.Italic = true
	case render.BlockFallback:
		p.Size = b.paginator.FontSize(style.TextLen)
	}
	return &paragraph{b: b, p: p}
}

// AddTable places the table on a slide of its own.
func (b *Backend) AddTable(rows, cols int) render.Table {
	t := b.pres.AddSlide().AddTable(rows, cols, margin, margin, b.contentWidth(), tableHeight)
	t.HeaderFill = headerFill
	return &table{b: b, t: t}
}

// AddImage places the picture on a slide of its own, captioned with alt.
func (b *Backend) AddImage(img imageres.Image, alt string) error {
	_, err := b.imageSlide(img, alt, "")
	return err
}

func (b *Backend) imageSlide(img imageres.Image, caption, link string) (*pptx.Picture, error) {
	data, err := pptx.ReadImage(img.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", imageres.ErrUnsupportedImage, err)
	}

	slide := b.pres.AddSlide()
	pic := slide.AddPicture(data, margin, margin, b.contentWidth())
	pic.Descr = caption
	pic.Link = link

	if caption != "" {
		box := slide.AddTextBox(margin, margin+pic.H+captionGap, b.contentWidth(), captionHeight)
		box.AddParagraph().AddRun(caption)
	}
	return pic, nil
}

// Paginate splits p/div text longer than the slide budget.
func (b *Backend) Paginate(text string) []string {
	if !b.paginator.Overflows(text) {
		return nil
	}
	return b.paginator.Split(text)
}

// AddPage puts one chunk on a new slide, sized by its length.
func (b *Backend) AddPage(chunk string) {
	b.box = nil
	p := b.textBox().AddParagraph()
	p.Size = b.paginator.FontSize(utf8.RuneCountInString(chunk))
	p.AddRun(chunk)
	b.box = nil
}

// AddRule is a no-op; slides already separate blocks.
func (b *Backend) AddRule() {}

// Save writes the deck to path.
func (b *Backend) Save(ctx context.Context, path string) error {
	b.logger.Debug("writing presentation", "path", path, "slides", len(b.pres.Slides()))
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		return b.pres.Write(ctx, w)
	})
}

func alignment(a render.Alignment) pptx.Align {
	switch a {
	case render.AlignCenter:
		return pptx.AlignCenter
	case render.AlignRight:
		return pptx.AlignRight
	case render.AlignJustify:
		return pptx.AlignJustify
	default:
		return pptx.AlignLeft
	}
}
