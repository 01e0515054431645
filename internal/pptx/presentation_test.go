package pptx

// Notes:
// - Packages are checked by unzipping the written bytes: every XML part must
//   tokenize cleanly and the slide/relationship parts must reference each
//   other consistently
// - Pictures are generated with image/png so no fixtures are needed

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// unpack writes p and returns its parts by name.
func unpack(t *testing.T, p *Presentation) map[string]string {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Write(context.Background(), &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	parts := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		parts[f.Name] = string(data)
	}
	return parts
}

func assertWellFormed(t *testing.T, name, content string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(content))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Errorf("%s is not well-formed: %v", name, err)
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Package structure
// ---------------------------------------------------------------------------

func TestWrite_EmptyPresentation(t *testing.T) {
	t.Parallel()

	parts := unpack(t, New())

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/theme/theme1.xml",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/tableStyles.xml",
	} {
		if _, ok := parts[name]; !ok {
			t.Errorf("missing part %s", name)
		}
	}
	for name, content := range parts {
		if strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".rels") {
			assertWellFormed(t, name, content)
		}
	}
	if strings.Contains(parts["ppt/presentation.xml"], "sldIdLst") {
		t.Error("empty deck should not list slides")
	}
}

func TestWrite_SlideSizeAndFonts(t *testing.T) {
	t.Parallel()

	p := New()
	p.LatinFont = "Times New Roman"
	p.EastAsianFont = "SimSun"
	p.AddSlide()
	parts := unpack(t, p)

	if !strings.Contains(parts["ppt/presentation.xml"], `<p:sldSz cx="7560000" cy="10692000"/>`) {
		t.Error("slide size is not A4 portrait")
	}
	theme := parts["ppt/theme/theme1.xml"]
	if !strings.Contains(theme, `<a:latin typeface="Times New Roman"/>`) || !strings.Contains(theme, `<a:ea typeface="SimSun"/>`) {
		t.Error("theme fonts not applied")
	}
}

func TestWrite_SlidesAreRegistered(t *testing.T) {
	t.Parallel()

	p := New()
	for i := 0; i < 3; i++ {
		p.AddSlide().AddTextBox(Inches(0.5), Inches(0.5), Inches(7), Inches(5)).AddParagraph().AddRun("x")
	}
	parts := unpack(t, p)

	for _, name := range []string{"slide1", "slide2", "slide3"} {
		if _, ok := parts["ppt/slides/"+name+".xml"]; !ok {
			t.Errorf("missing %s", name)
		}
		if !strings.Contains(parts["[Content_Types].xml"], "/ppt/slides/"+name+".xml") {
			t.Errorf("%s not in content types", name)
		}
		if !strings.Contains(parts["ppt/_rels/presentation.xml.rels"], `Target="slides/`+name+`.xml"`) {
			t.Errorf("%s not related from presentation", name)
		}
	}
	if got := strings.Count(parts["ppt/presentation.xml"], "<p:sldId "); got != 3 {
		t.Errorf("sldId count = %d, want 3", got)
	}
}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

func TestWrite_RunFormatting(t *testing.T) {
	t.Parallel()

	p := New()
	para := p.AddSlide().AddTextBox(0, 0, Inches(7), Inches(5)).AddParagraph()
	para.Size = 20
	para.Italic = true
	para.Align = AlignCenter
	r := para.AddRun("a < b & c")
	r.Bold = true
	r.Underline = true
	r.Color = "0000FF"
	r.Highlight = "FFFF00"
	r.Font = "Courier New"

	slide := unpack(t, p)["ppt/slides/slide1.xml"]
	assertWellFormed(t, "slide1", slide)

	for _, want := range []string{
		`<a:pPr algn="ctr">`,
		`sz="2000"`,
		`b="1"`,
		`i="1"`,
		`u="sng"`,
		`<a:srgbClr val="0000FF"/>`,
		`<a:highlight><a:srgbClr val="FFFF00"/></a:highlight>`,
		`<a:latin typeface="Courier New"/>`,
		`<a:t>a &lt; b &amp; c</a:t>`,
		`<a:bodyPr wrap="square"`,
	} {
		if !strings.Contains(slide, want) {
			t.Errorf("slide missing %s", want)
		}
	}
}

func TestWrite_Bullets(t *testing.T) {
	t.Parallel()

	p := New()
	box := p.AddSlide().AddTextBox(0, 0, Inches(7), Inches(5))
	a := box.AddParagraph()
	a.Bullet = Bullet{Char: "•"}
	a.AddRun("dot")
	b := box.AddParagraph()
	b.Level = 1
	b.Bullet = Bullet{Number: 3}
	b.AddRun("three")
	box.AddParagraph().AddRun("plain")

	slide := unpack(t, p)["ppt/slides/slide1.xml"]
	for _, want := range []string{
		`<a:buChar char="•"/>`,
		`<a:buAutoNum type="arabicPeriod" startAt="3"/>`,
		`lvl="1"`,
		`<a:buNone/>`,
	} {
		if !strings.Contains(slide, want) {
			t.Errorf("slide missing %s", want)
		}
	}
}

func TestWrite_Hyperlinks(t *testing.T) {
	t.Parallel()

	p := New()
	para := p.AddSlide().AddTextBox(0, 0, Inches(7), Inches(5)).AddParagraph()
	para.AddRun("go").Link = "https://go.dev/?a=1&b=2"
	para.AddRun(" and ")
	para.AddRun("docs").Link = "https://pkg.go.dev"

	parts := unpack(t, p)
	slide := parts["ppt/slides/slide1.xml"]
	rels := parts["ppt/slides/_rels/slide1.xml.rels"]

	if !strings.Contains(slide, `<a:hlinkClick r:id="rId2"/>`) || !strings.Contains(slide, `<a:hlinkClick r:id="rId3"/>`) {
		t.Errorf("hyperlink ids not assigned in order: %s", slide)
	}
	if !strings.Contains(rels, `Id="rId2" Type="`+relHyperlink+`" Target="https://go.dev/?a=1&amp;b=2" TargetMode="External"`) {
		t.Errorf("rels = %s", rels)
	}
	if !strings.Contains(rels, `Target="../slideLayouts/slideLayout1.xml"`) {
		t.Error("slide not related to its layout")
	}
}

func TestWrite_EmptyTextBoxStillHasParagraph(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddSlide().AddTextBox(0, 0, Inches(1), Inches(1))
	slide := unpack(t, p)["ppt/slides/slide1.xml"]
	if !strings.Contains(slide, "<a:p>") {
		t.Error("text body without paragraphs")
	}
}

// ---------------------------------------------------------------------------
// Pictures
// ---------------------------------------------------------------------------

func TestAddPicture_KeepsAspectRatio(t *testing.T) {
	t.Parallel()

	img, err := DecodeImage(pngBytes(t, 200, 100))
	if err != nil {
		t.Fatalf("DecodeImage() error = %v", err)
	}
	if img.Ext != "png" || img.Width != 200 || img.Height != 100 {
		t.Fatalf("image = %+v", img)
	}

	pic := New().AddSlide().AddPicture(img, Inches(0.5), Inches(0.5), Inches(6))
	if pic.H != Inches(3) {
		t.Errorf("height = %d, want %d", pic.H, Inches(3))
	}
}

func TestWrite_PictureMediaAndLinks(t *testing.T) {
	t.Parallel()

	img, err := DecodeImage(pngBytes(t, 10, 10))
	if err != nil {
		t.Fatal(err)
	}
	p := New()
	p.AddSlide().AddPicture(img, 0, 0, Inches(1))
	pic := p.AddSlide().AddPicture(img, 0, 0, Inches(1))
	pic.Link = "https://example.test"
	pic.Descr = `"quoted"`

	parts := unpack(t, p)
	if _, ok := parts["ppt/media/image1.png"]; !ok {
		t.Error("missing image1.png")
	}
	if parts["ppt/media/image2.png"] != string(img.Data) {
		t.Error("image2.png does not hold the picture bytes")
	}

	slide2 := parts["ppt/slides/slide2.xml"]
	assertWellFormed(t, "slide2", slide2)
	if !strings.Contains(slide2, `<a:blip r:embed="rId2"/>`) || !strings.Contains(slide2, `<a:hlinkClick r:id="rId3"/>`) {
		t.Errorf("slide2 = %s", slide2)
	}
	rels := parts["ppt/slides/_rels/slide2.xml.rels"]
	if !strings.Contains(rels, `Target="../media/image2.png"`) {
		t.Errorf("rels = %s", rels)
	}
}

func TestReadImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "a.png")
	bad := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(good, pngBytes(t, 4, 2), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}

	if img, err := ReadImage(good); err != nil || img.Width != 4 {
		t.Errorf("ReadImage(png) = %+v, %v", img, err)
	}
	if _, err := ReadImage(bad); !errors.Is(err, ErrImageFormat) {
		t.Errorf("ReadImage(txt) error = %v, want %v", err, ErrImageFormat)
	}
	if _, err := ReadImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("ReadImage(missing) should fail")
	}
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

func TestWrite_Table(t *testing.T) {
	t.Parallel()

	p := New()
	tbl := p.AddSlide().AddTable(2, 3, Inches(0.5), Inches(0.5), Inches(6), Inches(3))
	tbl.HeaderFill = "ADD8E6"
	tbl.Cell(0, 0).Paragraph().AddRun("h").Bold = true
	tbl.Cell(1, 2).Paragraph().Align = AlignRight
	tbl.Cell(1, 2).Paragraph().AddRun("v")

	slide := unpack(t, p)["ppt/slides/slide1.xml"]
	assertWellFormed(t, "slide1", slide)

	if got := strings.Count(slide, "<a:gridCol "); got != 3 {
		t.Errorf("gridCol count = %d, want 3", got)
	}
	if got := strings.Count(slide, "<a:tr "); got != 2 {
		t.Errorf("row count = %d, want 2", got)
	}
	if got := strings.Count(slide, "<a:tc>"); got != 6 {
		t.Errorf("cell count = %d, want 6", got)
	}
	if got := strings.Count(slide, `<a:srgbClr val="ADD8E6"/>`); got != 3 {
		t.Errorf("header fills = %d, want 3", got)
	}
	if !strings.Contains(slide, `<a:pPr algn="r">`) {
		t.Error("cell alignment not written")
	}
}

func TestWrite_CancelledContext(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddSlide()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Write(ctx, io.Discard); !errors.Is(err, context.Canceled) {
		t.Errorf("Write() error = %v, want %v", err, context.Canceled)
	}
}
