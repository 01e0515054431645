package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2office/internal/imageres"
)

// recorder is a Backend that keeps every call for inspection.
type recorder struct {
	blocks    int
	items     []any
	paginator *Paginator
	imageErr  error
	saved     string
}

var (
	_ Backend   = (*recorder)(nil)
	_ Paragraph = (*recParagraph)(nil)
	_ Table     = (*recTable)(nil)
)

type recRun struct {
	Text  string
	F     Formatting
	Href  string
	Image string
}

type recParagraph struct {
	Style ParagraphStyle
	Runs  []recRun
}

type recTable struct {
	Rows, Cols int
	Cells      [][]*recParagraph
	Aligns     [][]Alignment
}

type recImage struct {
	Path string
	Alt  string
}

type recPage struct {
	Text string
}

type recRule struct{}

func (r *recorder) BeginBlock() { r.blocks++ }

func (r *recorder) AddParagraph(style ParagraphStyle) Paragraph {
	p := &recParagraph{Style: style}
	r.items = append(r.items, p)
	return p
}

func (r *recorder) AddTable(rows, cols int) Table {
	t := &recTable{Rows: rows, Cols: cols}
	for i := 0; i < rows; i++ {
		t.Cells = append(t.Cells, make([]*recParagraph, cols))
		t.Aligns = append(t.Aligns, make([]Alignment, cols))
		for j := 0; j < cols; j++ {
			t.Cells[i][j] = &recParagraph{}
		}
	}
	r.items = append(r.items, t)
	return t
}

func (r *recorder) AddImage(img imageres.Image, alt string) error {
	if r.imageErr != nil {
		return r.imageErr
	}
	r.items = append(r.items, recImage{Path: img.Path, Alt: alt})
	return nil
}

func (r *recorder) Paginate(text string) []string {
	if r.paginator == nil || !r.paginator.Overflows(text) {
		return nil
	}
	return r.paginator.Split(text)
}

func (r *recorder) AddPage(chunk string) { r.items = append(r.items, recPage{Text: chunk}) }

func (r *recorder) AddRule() { r.items = append(r.items, recRule{}) }

func (r *recorder) Save(_ context.Context, path string) error {
	r.saved = path
	return nil
}

func (p *recParagraph) AddText(text string, f Formatting) {
	p.Runs = append(p.Runs, recRun{Text: text, F: f})
}

func (p *recParagraph) AddLink(text, href string, f Formatting) {
	p.Runs = append(p.Runs, recRun{Text: text, F: f, Href: href})
}

func (p *recParagraph) AddImage(img imageres.Image, alt string) error {
	p.Runs = append(p.Runs, recRun{Image: img.Path, Text: alt})
	return nil
}

func (p *recParagraph) AddLinkedImage(img imageres.Image, href string) error {
	p.Runs = append(p.Runs, recRun{Image: img.Path, Href: href})
	return nil
}

func (t *recTable) Cell(row, col int, align Alignment) Paragraph {
	t.Aligns[row][col] = align
	return t.Cells[row][col]
}

func (p *recParagraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func (r *recorder) paragraphs() []*recParagraph {
	var out []*recParagraph
	for _, it := range r.items {
		if p, ok := it.(*recParagraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// fakeResolver returns canned images keyed by reference; anything else is
// reported missing.
type fakeResolver struct {
	images map[string]imageres.Image
	errs   map[string]error
	calls  []string
}

func (f *fakeResolver) Resolve(_ context.Context, ref, _ string) (imageres.Image, error) {
	f.calls = append(f.calls, ref)
	if err, ok := f.errs[ref]; ok {
		return imageres.Image{Source: ref}, err
	}
	if img, ok := f.images[ref]; ok {
		img.Source = ref
		return img, nil
	}
	return imageres.Image{Source: ref}, errors.Join(imageres.ErrImageNotFound, errors.New(ref))
}

// walk parses body HTML and walks it into a fresh recorder.
func walk(t *testing.T, body string, opts ...func(*recorder)) *recorder {
	t.Helper()
	return walkWith(t, body, &fakeResolver{}, opts...)
}

func walkWith(t *testing.T, body string, res Resolver, opts ...func(*recorder)) *recorder {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<!DOCTYPE html><html><body>" + body + "</body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec := &recorder{}
	for _, opt := range opts {
		opt(rec)
	}
	if err := NewWalker(rec, res).Walk(context.Background(), doc); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return rec
}
