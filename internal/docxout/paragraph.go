package docxout

import (
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/alnah/go-md2office/internal/imageres"
	"github.com/alnah/go-md2office/internal/render"
)

type paragraph struct {
	b *Backend
	p *docx.Paragraph
	// heading is the run size of a heading paragraph, empty otherwise.
	heading string
}

// addText appends a plain run whose text keeps its edge whitespace.
func addText(p *docx.Paragraph, text string) *docx.Run {
	run := p.AddText(text)
	preserve(run)
	return run
}

func preserve(run *docx.Run) {
	for _, child := range run.Children {
		if t, ok := child.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
}

// format applies f, and the heading styling, to run.
func (p *paragraph) format(run *docx.Run, f render.Formatting) {
	if run.RunProperties == nil {
		run.RunProperties = &docx.RunProperties{}
	}
	if p.heading != "" {
		run.Bold().Size(p.heading)
	}
	if f.Bold {
		run.Bold()
	}
	if f.Italic {
		run.Italic()
	}
	if f.Underline {
		run.Underline("single")
	}
	if f.Highlight {
		run.Highlight(highlightColor)
	}
	if f.Color != "" {
		run.Color(f.Color)
	}
	if f.Monospace {
		run.Font(monospaceFont, monospaceFont, monospaceFont, "")
	}
}

func (p *paragraph) AddText(text string, f render.Formatting) {
	p.format(addText(p.p, text), f)
}

// AddLink adds a hyperlink run. Fragment links stay styled text since
// headings carry no bookmarks.
func (p *paragraph) AddLink(text, href string, f render.Formatting) {
	if strings.HasPrefix(href, "#") {
		p.AddText(text, f)
		return
	}
	link := p.p.AddLink(text, href)
	link.Run = docx.Run{
		RunProperties: &docx.RunProperties{},
		Children:      []interface{}{&docx.Text{Text: text, XMLSpace: "preserve"}},
	}
	p.format(&link.Run, f)
}

// AddImage embeds the picture inline at its natural size, capped to the
// text column.
func (p *paragraph) AddImage(img imageres.Image, _ string) error {
	run, err := p.b.drawing(p.p, img)
	if err != nil {
		return err
	}
	if w := drawingWidth(run); w > ContentWidth {
		resize(run, ContentWidth)
	}
	return nil
}

// AddLinkedImage embeds a clickable picture 4in wide.
func (p *paragraph) AddLinkedImage(img imageres.Image, href string) error {
	run, err := p.b.drawing(p.p, img)
	if err != nil {
		return err
	}
	resize(run, linkedImageWidth)
	if strings.HasPrefix(href, "#") || href == "" {
		return nil
	}

	// Move the drawing run inside a hyperlink.
	p.p.Children = p.p.Children[:len(p.p.Children)-1]
	link := p.p.AddLink("", href)
	link.Run = docx.Run{
		RunProperties: &docx.RunProperties{},
		Children:      run.Children,
	}
	return nil
}

func drawingWidth(run *docx.Run) int64 {
	for _, child := range run.Children {
		if d, ok := child.(*docx.Drawing); ok && d.Inline != nil && d.Inline.Extent != nil {
			return d.Inline.Extent.CX
		}
	}
	return 0
}

type table struct {
	b *Backend
	t *docx.Table
}

// Cell returns the cell's paragraph. Justified text is left aligned in
// cells.
func (t *table) Cell(row, col int, align render.Alignment) render.Paragraph {
	p := t.t.TableRows[row].TableCells[col].Paragraphs[0]
	if align != render.AlignJustify {
		justify(p, align)
	}
	return &paragraph{b: t.b, p: p}
}
