package pptxout

import (
	"strings"

	"github.com/alnah/go-md2office/internal/imageres"
	"github.com/alnah/go-md2office/internal/pptx"
	"github.com/alnah/go-md2office/internal/render"
)

type paragraph struct {
	b *Backend
	p *pptx.Paragraph
}

func (p *paragraph) run(text string, f render.Formatting) *pptx.Run {
	r := p.p.AddRun(text)
	r.Bold = f.Bold
	r.Italic = f.Italic
	r.Underline = f.Underline
	r.Color = f.Color
	if f.Highlight {
		r.Highlight = highlightColor
	}
	if f.Monospace {
		r.Font = monospaceFont
	}
	return r
}

func (p *paragraph) AddText(text string, f render.Formatting) {
	p.run(text, f)
}

// AddLink adds a clickable run. Fragment links stay styled text: slides
// have no bookmarks to jump to.
func (p *paragraph) AddLink(text, href string, f render.Formatting) {
	r := p.run(text, f)
	if !strings.HasPrefix(href, "#") {
		r.Link = href
	}
}

// AddImage leaves a marker in the text and puts the picture on its own
// slide.
func (p *paragraph) AddImage(img imageres.Image, alt string) error {
	if _, err := p.b.imageSlide(img, alt, ""); err != nil {
		return err
	}
	p.p.AddRun(marker(alt))
	return nil
}

// AddLinkedImage is AddImage with a clickable picture.
func (p *paragraph) AddLinkedImage(img imageres.Image, href string) error {
	link := href
	if strings.HasPrefix(link, "#") {
		link = ""
	}
	if _, err := p.b.imageSlide(img, "", link); err != nil {
		return err
	}
	p.p.AddRun(marker(""))
	return nil
}

func marker(alt string) string {
	if alt == "" {
		return "[Image]"
	}
	return "[Image: " + alt + "]"
}

type table struct {
	b *Backend
	t *pptx.Table
}

func (t *table) Cell(row, col int, align render.Alignment) render.Paragraph {
	p := t.t.Cell(row, col).Paragraph()
	p.Align = alignment(align)
	return &paragraph{b: t.b, p: p}
}
