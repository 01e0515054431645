// Package docxout renders the walker's output as a Word document.
package docxout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/alnah/go-md2office/internal/fileutil"
	"github.com/alnah/go-md2office/internal/imageres"
	"github.com/alnah/go-md2office/internal/render"
)

// A4 portrait page in twips, with Word's default one inch margins.
const (
	pageWidth    = 11906
	pageHeight   = 16838
	pageMargin   = 1440
	headerMargin = 720
)

// EMU per twip, and the drawing widths derived from the page.
const (
	emuPerTwip = 635
	// ContentWidth is the text column width in EMU.
	ContentWidth     int64 = (pageWidth - 2*pageMargin) * emuPerTwip
	linkedImageWidth int64 = 4 * 914400
)

// Run styling.
const (
	DefaultLatinFont     = "Times New Roman"
	DefaultEastAsianFont = "SimSun"

	monospaceFont  = "Courier New"
	highlightColor = "yellow"
	headerFill     = "ADD8E6"
	ruleText       = "________________________________________"
	quoteIndent    = 720
)

// headingSizes holds run sizes in half-points for h1 to h6.
var headingSizes = [...]string{"40", "32", "28", "26", "24", "22"}

// Compile-time interface checks.
var (
	_ render.Backend   = (*Backend)(nil)
	_ render.Paragraph = (*paragraph)(nil)
	_ render.Table     = (*table)(nil)
)

// Backend builds a Word document.
type Backend struct {
	doc           *docx.Docx
	latinFont     string
	eastAsianFont string
	logger        *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithFonts sets the Latin and East Asian typefaces applied to every run
// without an explicit font.
func WithFonts(latin, eastAsian string) Option {
	return func(b *Backend) {
		if latin != "" {
			b.latinFont = latin
		}
		if eastAsian != "" {
			b.eastAsianFont = eastAsian
		}
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

// New creates an empty A4 document.
func New(opts ...Option) *Backend {
	b := &Backend{
		doc:           docx.New().WithDefaultTheme(),
		latinFont:     DefaultLatinFont,
		eastAsianFont: DefaultEastAsianFont,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Document exposes the document under construction.
func (b *Backend) Document() *docx.Docx { return b.doc }

// BeginBlock is a no-op: paragraphs already separate blocks.
func (b *Backend) BeginBlock() {}

// AddParagraph appends a body paragraph styled for its block kind.
func (b *Backend) AddParagraph(style render.ParagraphStyle) render.Paragraph {
	p := b.doc.AddParagraph()
	justify(p, style.Align)
	out := &paragraph{b: b, p: p}

	switch style.Kind {
	case render.BlockHeading:
		level := min(max(style.Level, 1), len(headingSizes))
		p.Style("Heading" + strconv.Itoa(level))
		out.heading = headingSizes[level-1]
	case render.BlockListItem:
		for range style.Level {
			p.AddTab()
		}
		marker := "• "
		if style.Ordered {
			marker = strconv.Itoa(style.Index) + ". "
		}
		addText(p, marker)
	case render.BlockQuote:
		if p.Properties == nil {
			p.Properties = &docx.ParagraphProperties{}
		}
		p.Properties.Ind = &docx.Ind{Left: quoteIndent}
	}
	return out
}

// AddTable appends a bordered table whose first row is shaded. Every
// cell gets one paragraph, filled or not.
func (b *Backend) AddTable(rows, cols int) render.Table {
	t := b.doc.AddTable(rows, cols, 0, nil)
	for i, row := range t.TableRows {
		for _, cell := range row.TableCells {
			cell.AddParagraph()
			if i == 0 {
				cell.Shade("clear", "auto", headerFill)
			}
		}
	}
	return &table{b: b, t: t}
}

// AddImage places the picture in a paragraph of its own, scaled to the
// text column.
func (b *Backend) AddImage(img imageres.Image, _ string) error {
	p := b.doc.AddParagraph()
	run, err := b.drawing(p, img)
	if err != nil {
		items := b.doc.Document.Body.Items
		b.doc.Document.Body.Items = items[:len(items)-1]
		return err
	}
	resize(run, ContentWidth)
	return nil
}

// drawing embeds the image file into p.
func (b *Backend) drawing(p *docx.Paragraph, img imageres.Image) (*docx.Run, error) {
	data, err := os.ReadFile(img.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", imageres.ErrUnsupportedImage, err)
	}
	run, err := p.AddInlineDrawing(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", imageres.ErrUnsupportedImage, err)
	}
	return run, nil
}

// Paginate returns nil: documents flow across pages on their own.
func (b *Backend) Paginate(string) []string { return nil }

// AddPage is never reached since Paginate never splits.
func (b *Backend) AddPage(chunk string) {
	addText(b.doc.AddParagraph(), chunk)
}

// AddRule appends a centered separator line.
func (b *Backend) AddRule() {
	addText(b.doc.AddParagraph().Justification("center"), ruleText)
}

// Save applies the page setup and default fonts, then writes the
// document to path.
func (b *Backend) Save(_ context.Context, path string) error {
	b.doc.Document.Body.Items = append(b.doc.Document.Body.Items, &docx.SectPr{
		PgSz: &docx.PgSz{W: pageWidth, H: pageHeight},
		PgMar: &docx.PgMar{
			Top:    pageMargin,
			Left:   pageMargin,
			Bottom: pageMargin,
			Right:  pageMargin,
			Header: headerMargin,
			Footer: headerMargin,
		},
	})
	n := b.applyFonts()
	b.logger.Debug("writing document", "path", path, "runs", n)

	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		_, err := b.doc.WriteTo(w)
		return err
	})
}

// applyFonts gives every run without a typeface the document fonts and
// returns how many runs it visited.
func (b *Backend) applyFonts() int {
	n := 0
	for _, run := range b.runs() {
		n++
		if run.RunProperties == nil {
			run.RunProperties = &docx.RunProperties{}
		}
		if run.RunProperties.Fonts != nil {
			continue
		}
		run.Font(b.latinFont, b.eastAsianFont, b.latinFont, "eastAsia")
	}
	return n
}

// runs lists every run in the body, table cells and hyperlinks included.
func (b *Backend) runs() []*docx.Run {
	var out []*docx.Run
	for _, item := range b.doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			out = appendRuns(out, it)
		case *docx.Table:
			for _, row := range it.TableRows {
				for _, cell := range row.TableCells {
					for _, p := range cell.Paragraphs {
						out = appendRuns(out, p)
					}
				}
			}
		}
	}
	return out
}

func appendRuns(out []*docx.Run, p *docx.Paragraph) []*docx.Run {
	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			out = append(out, c)
		case *docx.Hyperlink:
			out = append(out, &c.Run)
		}
	}
	return out
}

// resize scales a drawing run to width, keeping its aspect ratio.
func resize(run *docx.Run, width int64) {
	for _, child := range run.Children {
		d, ok := child.(*docx.Drawing)
		if !ok || d.Inline == nil || d.Inline.Extent == nil || d.Inline.Extent.CX == 0 {
			continue
		}
		ext := d.Inline.Extent
		d.Inline.Size(width, ext.CY*width/ext.CX)
	}
}

func justify(p *docx.Paragraph, a render.Alignment) {
	switch a {
	case render.AlignCenter:
		p.Justification("center")
	case render.AlignRight:
		p.Justification("right")
	case render.AlignJustify:
		p.Justification("both")
	}
}

// Text returns the visible text of a paragraph, hyperlinks included.
func Text(p *docx.Paragraph) string {
	var sb strings.Builder
	for _, run := range appendRuns(nil, p) {
		for _, child := range run.Children {
			switch c := child.(type) {
			case *docx.Text:
				sb.WriteString(c.Text)
			case *docx.Tab:
				sb.WriteByte('\t')
			}
		}
	}
	return sb.String()
}
