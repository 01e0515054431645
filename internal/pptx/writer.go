package pptx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// XML namespaces and relationship types.
const (
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"

	relSlideMaster = nsR + "/slideMaster"
	relSlideLayout = nsR + "/slideLayout"
	relSlide       = nsR + "/slide"
	relTheme       = nsR + "/theme"
	relImage       = nsR + "/image"
	relHyperlink   = nsR + "/hyperlink"
	relPresProps   = nsR + "/presProps"
	relViewProps   = nsR + "/viewProps"
	relTableStyles = nsR + "/tableStyles"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// bulletIndent is the hanging indent of one list level.
const bulletIndent = 342900

// Write serializes the presentation as a .pptx package.
func (p *Presentation) Write(ctx context.Context, w io.Writer) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", p.contentTypesXML()},
		{"_rels/.rels", rootRelsXML},
		{"docProps/core.xml", p.corePropsXML()},
		{"docProps/app.xml", p.appPropsXML()},
		{"ppt/presentation.xml", p.presentationXML()},
		{"ppt/_rels/presentation.xml.rels", p.presentationRelsXML()},
		{"ppt/presProps.xml", presPropsXML},
		{"ppt/viewProps.xml", viewPropsXML},
		{"ppt/tableStyles.xml", tableStylesXML},
		{"ppt/theme/theme1.xml", p.themeXML()},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
	}
	for _, part := range parts {
		if err := writeZipEntry(zw, part.name, []byte(part.content)); err != nil {
			_ = zw.Close()
			return err
		}
	}

	media := 0
	for i, slide := range p.slides {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return err
		}
		sw := &slideWriter{media: &media}
		body := sw.slideXML(slide)
		for _, m := range sw.mediaParts {
			if err := writeZipEntry(zw, "ppt/media/"+m.name, m.data); err != nil {
				_ = zw.Close()
				return err
			}
		}
		num := i + 1
		if err := writeZipEntry(zw, fmt.Sprintf("ppt/slides/slide%d.xml", num), []byte(body)); err != nil {
			_ = zw.Close()
			return err
		}
		if err := writeZipEntry(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", num), []byte(sw.relsXML())); err != nil {
			_ = zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing package: %w", err)
	}
	return nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// esc escapes text for XML content and attribute values.
func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// ---------------------------------------------------------------------------
// Package-level parts
// ---------------------------------------------------------------------------

func (p *Presentation) contentTypesXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Default Extension="jpeg" ContentType="image/jpeg"/>`)
	b.WriteString(`<Default Extension="gif" ContentType="image/gif"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	for i := range p.slides {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/viewProps.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/tableStyles.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return b.String()
}

func (p *Presentation) corePropsXML() string {
	created := p.Created
	if created.IsZero() {
		created = time.Now()
	}
	stamp := created.UTC().Format(time.RFC3339)
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + esc(p.Title) + `</dc:title>` +
		`<dc:creator>` + esc(p.Creator) + `</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func (p *Presentation) appPropsXML() string {
	return xmlHeader +
		`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` +
		`<Application>go-md2office</Application>` +
		`<PresentationFormat>Custom</PresentationFormat>` +
		fmt.Sprintf(`<Slides>%d</Slides>`, len(p.slides)) +
		`<Notes>0</Notes><HiddenSlides>0</HiddenSlides>` +
		`</Properties>`
}

// presentationXML lists the slides. Slide relationships start after the
// five fixed ones.
func (p *Presentation) presentationXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" saveSubsetFonts="1">`, nsA, nsR, nsP)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	if len(p.slides) > 0 {
		b.WriteString(`<p:sldIdLst>`)
		for i := range p.slides {
			fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 6+i)
		}
		b.WriteString(`</p:sldIdLst>`)
	}
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, p.Width, p.Height)
	b.WriteString(`<p:notesSz cx="6858000" cy="9144000"/>`)
	b.WriteString(`<p:defaultTextStyle>`)
	for lvl := 1; lvl <= 9; lvl++ {
		fmt.Fprintf(&b, `<a:lvl%dpPr marL="%d" algn="l"><a:defRPr sz="1800">`, lvl, (lvl-1)*457200)
		b.WriteString(`<a:solidFill><a:schemeClr val="tx1"/></a:solidFill>`)
		fmt.Fprintf(&b, `<a:latin typeface="%s"/><a:ea typeface="%s"/>`, esc(p.LatinFont), esc(p.EastAsianFont))
		fmt.Fprintf(&b, `</a:defRPr></a:lvl%dpPr>`, lvl)
	}
	b.WriteString(`</p:defaultTextStyle>`)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func (p *Presentation) presentationRelsXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Relationships xmlns="%s">`, nsRel)
	writeRel(&b, "rId1", relSlideMaster, "slideMasters/slideMaster1.xml", false)
	writeRel(&b, "rId2", relPresProps, "presProps.xml", false)
	writeRel(&b, "rId3", relViewProps, "viewProps.xml", false)
	writeRel(&b, "rId4", relTheme, "theme/theme1.xml", false)
	writeRel(&b, "rId5", relTableStyles, "tableStyles.xml", false)
	for i := range p.slides {
		writeRel(&b, "rId"+strconv.Itoa(6+i), relSlide, fmt.Sprintf("slides/slide%d.xml", i+1), false)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func writeRel(b *strings.Builder, id, typ, target string, external bool) {
	fmt.Fprintf(b, `<Relationship Id="%s" Type="%s" Target="%s"`, id, typ, esc(target))
	if external {
		b.WriteString(` TargetMode="External"`)
	}
	b.WriteString(`/>`)
}

// ---------------------------------------------------------------------------
// Slides
// ---------------------------------------------------------------------------

type relationship struct {
	id       string
	typ      string
	target   string
	external bool
}

type mediaPart struct {
	name string
	data []byte
}

// slideWriter renders one slide, collecting the relationships and media
// its shapes reference. media numbers pictures across the whole deck.
type slideWriter struct {
	rels       []relationship
	mediaParts []mediaPart
	media      *int
	nextID     int
}

func (sw *slideWriter) rel(typ, target string, external bool) string {
	id := "rId" + strconv.Itoa(len(sw.rels)+2) // rId1 is the layout
	sw.rels = append(sw.rels, relationship{id: id, typ: typ, target: target, external: external})
	return id
}

func (sw *slideWriter) shapeID() int {
	sw.nextID++
	return sw.nextID
}

func (sw *slideWriter) relsXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Relationships xmlns="%s">`, nsRel)
	writeRel(&b, "rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml", false)
	for _, r := range sw.rels {
		writeRel(&b, r.id, r.typ, r.target, r.external)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func (sw *slideWriter) slideXML(s *Slide) string {
	sw.nextID = 1 // 1 is the group shape

	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsA, nsR, nsP)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
	for _, shape := range s.shapes {
		switch sh := shape.(type) {
		case *TextBox:
			sw.textBoxXML(&b, sh)
		case *Picture:
			sw.pictureXML(&b, sh)
		case *Table:
			sw.tableXML(&b, sh)
		}
	}
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return b.String()
}

func xfrm(b *strings.Builder, tag string, r Rect) {
	fmt.Fprintf(b, `<%s><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></%s>`, tag, r.X, r.Y, r.W, r.H, tag)
}

func (sw *slideWriter) textBoxXML(b *strings.Builder, t *TextBox) {
	id := sw.shapeID()
	b.WriteString(`<p:sp><p:nvSpPr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="TextBox %d"/>`, id, id)
	b.WriteString(`<p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`)
	b.WriteString(`<p:spPr>`)
	xfrm(b, "a:xfrm", t.Rect)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`)
	b.WriteString(`<p:txBody>`)
	wrap := "none"
	if t.WordWrap {
		wrap = "square"
	}
	fmt.Fprintf(b, `<a:bodyPr wrap="%s" rtlCol="0"><a:spAutoFit/></a:bodyPr><a:lstStyle/>`, wrap)
	sw.paragraphsXML(b, t.Paragraphs)
	b.WriteString(`</p:txBody></p:sp>`)
}

// paragraphsXML writes at least one a:p; a text body may not be empty.
func (sw *slideWriter) paragraphsXML(b *strings.Builder, paras []*Paragraph) {
	if len(paras) == 0 {
		b.WriteString(`<a:p><a:endParaRPr lang="en-US" dirty="0"/></a:p>`)
		return
	}
	for _, p := range paras {
		sw.paragraphXML(b, p)
	}
}

func (sw *slideWriter) paragraphXML(b *strings.Builder, p *Paragraph) {
	b.WriteString(`<a:p><a:pPr`)
	if p.Bullet.Char != "" || p.Bullet.Number > 0 {
		fmt.Fprintf(b, ` marL="%d" indent="%d"`, bulletIndent*(p.Level+1), -bulletIndent)
	} else if p.Level > 0 {
		fmt.Fprintf(b, ` marL="%d"`, bulletIndent*p.Level)
	}
	if p.Level > 0 {
		fmt.Fprintf(b, ` lvl="%d"`, min(p.Level, 8))
	}
	fmt.Fprintf(b, ` algn="%s">`, p.Align.attr())
	switch {
	case p.Bullet.Number > 0:
		fmt.Fprintf(b, `<a:buFont typeface="+mj-lt"/><a:buAutoNum type="arabicPeriod" startAt="%d"/>`, p.Bullet.Number)
	case p.Bullet.Char != "":
		fmt.Fprintf(b, `<a:buFont typeface="Arial"/><a:buChar char="%s"/>`, esc(p.Bullet.Char))
	default:
		b.WriteString(`<a:buNone/>`)
	}
	b.WriteString(`</a:pPr>`)

	for _, r := range p.Runs {
		if r.Text == "" {
			continue
		}
		sw.runXML(b, p, r)
	}

	b.WriteString(`<a:endParaRPr lang="en-US"`)
	if p.Size > 0 {
		fmt.Fprintf(b, ` sz="%d"`, p.Size*100)
	}
	b.WriteString(` dirty="0"/></a:p>`)
}

// runXML writes one a:r. Paragraph-level size, bold and italic are folded
// into every run so viewers that ignore paragraph defaults agree.
func (sw *slideWriter) runXML(b *strings.Builder, p *Paragraph, r *Run) {
	size := r.Size
	if size == 0 {
		size = p.Size
	}

	b.WriteString(`<a:r><a:rPr lang="en-US"`)
	if size > 0 {
		fmt.Fprintf(b, ` sz="%d"`, size*100)
	}
	if r.Bold || p.Bold {
		b.WriteString(` b="1"`)
	}
	if r.Italic || p.Italic {
		b.WriteString(` i="1"`)
	}
	if r.Underline {
		b.WriteString(` u="sng"`)
	}
	b.WriteString(` dirty="0">`)
	if r.Color != "" {
		fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, esc(r.Color))
	}
	if r.Highlight != "" {
		fmt.Fprintf(b, `<a:highlight><a:srgbClr val="%s"/></a:highlight>`, esc(r.Highlight))
	}
	if r.Font != "" {
		fmt.Fprintf(b, `<a:latin typeface="%s"/>`, esc(r.Font))
	}
	if r.Link != "" {
		fmt.Fprintf(b, `<a:hlinkClick r:id="%s"/>`, sw.rel(relHyperlink, r.Link, true))
	}
	b.WriteString(`</a:rPr>`)
	b.WriteString(`<a:t>` + esc(r.Text) + `</a:t></a:r>`)
}

func (sw *slideWriter) pictureXML(b *strings.Builder, pic *Picture) {
	*sw.media++
	name := fmt.Sprintf("image%d.%s", *sw.media, pic.Image.Ext)
	sw.mediaParts = append(sw.mediaParts, mediaPart{name: name, data: pic.Image.Data})
	embed := sw.rel(relImage, "../media/"+name, false)

	id := sw.shapeID()
	b.WriteString(`<p:pic><p:nvPicPr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="Picture %d" descr="%s">`, id, id, esc(pic.Descr))
	if pic.Link != "" {
		fmt.Fprintf(b, `<a:hlinkClick r:id="%s"/>`, sw.rel(relHyperlink, pic.Link, true))
	}
	b.WriteString(`</p:cNvPr>`)
	b.WriteString(`<p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`)
	fmt.Fprintf(b, `<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, embed)
	b.WriteString(`<p:spPr>`)
	xfrm(b, "a:xfrm", pic.Rect)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`)
	b.WriteString(`</p:pic>`)
}

func (sw *slideWriter) tableXML(b *strings.Builder, t *Table) {
	id := sw.shapeID()
	b.WriteString(`<p:graphicFrame><p:nvGraphicFramePr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="Table %d"/>`, id, id)
	b.WriteString(`<p:cNvGraphicFramePr><a:graphicFrameLocks noGrp="1"/></p:cNvGraphicFramePr><p:nvPr/></p:nvGraphicFramePr>`)
	xfrm(b, "p:xfrm", t.Rect)
	b.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table">`)
	b.WriteString(`<a:tbl><a:tblPr firstRow="1" bandRow="1"/><a:tblGrid>`)

	var colW, rowH EMU
	if t.Cols > 0 {
		colW = t.W / EMU(t.Cols)
	}
	if t.Rows > 0 {
		rowH = t.H / EMU(t.Rows)
	}
	for j := 0; j < t.Cols; j++ {
		fmt.Fprintf(b, `<a:gridCol w="%d"/>`, colW)
	}
	b.WriteString(`</a:tblGrid>`)

	for i := 0; i < t.Rows; i++ {
		fmt.Fprintf(b, `<a:tr h="%d">`, rowH)
		for j := 0; j < t.Cols; j++ {
			b.WriteString(`<a:tc><a:txBody><a:bodyPr wrap="square"/><a:lstStyle/>`)
			sw.paragraphsXML(b, t.cells[i][j].Paragraphs)
			b.WriteString(`</a:txBody><a:tcPr>`)
			for _, side := range []string{"lnL", "lnR", "lnT", "lnB"} {
				fmt.Fprintf(b, `<a:%s w="12700"><a:solidFill><a:srgbClr val="808080"/></a:solidFill></a:%s>`, side, side)
			}
			if i == 0 && t.HeaderFill != "" {
				fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, esc(t.HeaderFill))
			}
			b.WriteString(`</a:tcPr></a:tc>`)
		}
		b.WriteString(`</a:tr>`)
	}
	b.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
}
