package render

// Notes:
// - The walker is driven against a recording Backend (recorder_test.go); the
//   docx and pptx backends have their own tests
// - HTML inputs mirror what the pipeline produces from goldmark, including the
//   newline text nodes between block elements
// - Image resolution uses a fake Resolver except where the placeholder text of
//   a real missing file is the point of the test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2office/internal/imageres"
)

// ---------------------------------------------------------------------------
// Formatting inheritance
// ---------------------------------------------------------------------------

func TestWalk_NestedEmphasis(t *testing.T) {
	t.Parallel()

	rec := walk(t, `<p><b><i>both</i></b> plain</p>`)

	paras := rec.paragraphs()
	if len(paras) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(paras))
	}
	runs := paras[0].Runs
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2: %+v", len(runs), runs)
	}
	if runs[0].Text != "both" || !runs[0].F.Bold || !runs[0].F.Italic {
		t.Errorf("first run = %+v, want bold+italic \"both\"", runs[0])
	}
	if runs[1].Text != " plain" || runs[1].F != (Formatting{}) {
		t.Errorf("second run = %+v, want unformatted \" plain\"", runs[1])
	}
}

func TestWalk_InlineFormattingTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want Formatting
	}{
		{"strong", `<p><strong>x</strong></p>`, Formatting{Bold: true}},
		{"em", `<p><em>x</em></p>`, Formatting{Italic: true}},
		{"u", `<p><u>x</u></p>`, Formatting{Underline: true}},
		{"code is underlined", `<p><code>x</code></p>`, Formatting{Underline: true}},
		{"mark", `<p><mark>x</mark></p>`, Formatting{Highlight: true}},
		{"unknown inline is transparent", `<p><del><b>x</b></del></p>`, Formatting{Bold: true}},
		{"quote is italic", `<blockquote><b>x</b></blockquote>`, Formatting{Bold: true, Italic: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			paras := walk(t, tt.html).paragraphs()
			if len(paras) != 1 || len(paras[0].Runs) != 1 {
				t.Fatalf("unexpected output: %+v", paras)
			}
			if got := paras[0].Runs[0].F; got != tt.want {
				t.Errorf("formatting = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWalk_FormattingDoesNotLeakToSiblings(t *testing.T) {
	t.Parallel()

	rec := walk(t, `<p><em>a<strong>b</strong>c</em>d</p>`)
	runs := rec.paragraphs()[0].Runs

	want := []struct {
		text         string
		bold, italic bool
	}{
		{"a", false, true},
		{"b", true, true},
		{"c", false, true},
		{"d", false, false},
	}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs, want %d", len(runs), len(want))
	}
	for i, w := range want {
		if runs[i].Text != w.text || runs[i].F.Bold != w.bold || runs[i].F.Italic != w.italic {
			t.Errorf("run %d = %+v, want %+v", i, runs[i], w)
		}
	}
}

// ---------------------------------------------------------------------------
// Block dispatch
// ---------------------------------------------------------------------------

func TestWalk_HeadingAndParagraph(t *testing.T) {
	t.Parallel()

	rec := walk(t, "<h1 id=\"title\">Title</h1>\n<p>Hello <strong>world</strong></p>\n")

	if rec.blocks != 2 {
		t.Errorf("blocks = %d, want 2", rec.blocks)
	}
	paras := rec.paragraphs()
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}

	h := paras[0]
	if h.Style.Kind != BlockHeading || h.Style.Level != 1 || h.text() != "Title" {
		t.Errorf("heading = %+v", h)
	}

	p := paras[1]
	if len(p.Runs) != 2 {
		t.Fatalf("paragraph runs = %+v", p.Runs)
	}
	if p.Runs[0].Text != "Hello " || p.Runs[0].F.Bold {
		t.Errorf("run 0 = %+v, want plain \"Hello \"", p.Runs[0])
	}
	if p.Runs[1].Text != "world" || !p.Runs[1].F.Bold {
		t.Errorf("run 1 = %+v, want bold \"world\"", p.Runs[1])
	}
}

func TestWalk_CenteredContainers(t *testing.T) {
	t.Parallel()

	paras := walk(t, `<h2 align="center">T</h2><p align="center">x</p><p align="right">y</p>`).paragraphs()
	if len(paras) != 3 {
		t.Fatalf("got %d paragraphs", len(paras))
	}
	if paras[0].Style.Align != AlignCenter || paras[1].Style.Align != AlignCenter {
		t.Error("align=center not honored")
	}
	if paras[2].Style.Align != AlignLeft {
		t.Errorf("align=right gave %v, want left", paras[2].Style.Align)
	}
}

func TestWalk_BlockChildStartsNewContainer(t *testing.T) {
	t.Parallel()

	rec := walk(t, `<div>before<p>inside</p>after</div>`)
	paras := rec.paragraphs()

	var texts []string
	for _, p := range paras {
		texts = append(texts, p.text())
	}
	if got := strings.Join(texts, "|"); got != "before|inside|after" {
		t.Errorf("paragraphs = %q, want before|inside|after", got)
	}
	if rec.blocks != 1 {
		t.Errorf("blocks = %d, want 1", rec.blocks)
	}
}

func TestWalk_EmptyContainerEmitsNothing(t *testing.T) {
	t.Parallel()

	rec := walk(t, "<p></p>\n<div>  \n </div>")
	if len(rec.items) != 0 {
		t.Errorf("items = %+v, want none", rec.items)
	}
}

func TestWalk_FallbackParagraph(t *testing.T) {
	t.Parallel()

	rec := walk(t, `<custom-box>odd <b>tag</b></custom-box>`)
	paras := rec.paragraphs()
	if len(paras) != 1 {
		t.Fatalf("got %d paragraphs", len(paras))
	}
	if paras[0].Style.Kind != BlockFallback || paras[0].text() != "odd tag" {
		t.Errorf("fallback = %+v", paras[0])
	}
	if paras[0].Style.TextLen != utf8.RuneCountInString("odd tag") {
		t.Errorf("TextLen = %d", paras[0].Style.TextLen)
	}
}

func TestWalk_RuleAndIgnored(t *testing.T) {
	t.Parallel()

	rec := walk(t, `<!-- c --><hr><script>alert(1)</script>`)
	if len(rec.items) != 1 {
		t.Fatalf("items = %+v", rec.items)
	}
	if _, ok := rec.items[0].(recRule); !ok {
		t.Errorf("item = %T, want rule", rec.items[0])
	}
}

func TestWalk_LineBreakSplitsParagraph(t *testing.T) {
	t.Parallel()

	paras := walk(t, "<p>one<br>two\nthree</p>").paragraphs()
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}
	if paras[1].text() != "two three" {
		t.Errorf("soft break not folded: %q", paras[1].text())
	}
}

// ---------------------------------------------------------------------------
// Lists
// ---------------------------------------------------------------------------

func TestWalk_NestedLists(t *testing.T) {
	t.Parallel()

	rec := walk(t, "<ol start=\"3\">\n<li>one</li>\n<li>two\n<ul>\n<li>inner</li>\n</ul>\n</li>\n</ol>")
	paras := rec.paragraphs()
	if len(paras) != 3 {
		t.Fatalf("got %d paragraphs, want 3", len(paras))
	}

	want := []struct {
		text    string
		level   int
		ordered bool
		index   int
	}{
		{"one", 0, true, 3},
		{"two", 0, true, 4},
		{"inner", 1, false, 1},
	}
	for i, w := range want {
		s := paras[i].Style
		got := strings.TrimSpace(paras[i].text())
		if s.Kind != BlockListItem || got != w.text || s.Level != w.level || s.Ordered != w.ordered || s.Index != w.index {
			t.Errorf("item %d = %q %+v, want %+v", i, got, s, w)
		}
	}
	if paras[0].Style.TextLen == 0 {
		t.Error("list items should carry the list text length")
	}
}

func TestWalk_LooseListItem(t *testing.T) {
	t.Parallel()

	paras := walk(t, "<ul>\n<li>\n<p>loose <em>item</em></p>\n</li>\n</ul>").paragraphs()
	if len(paras) != 1 || paras[0].text() != "loose item" {
		t.Errorf("paragraphs = %+v", paras)
	}
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

func TestWalk_RaggedTable(t *testing.T) {
	t.Parallel()

	rec := walk(t, `<table>
<tr><th>a</th><th>b</th><th>c</th></tr>
<tr><td>1</td></tr>
<tr><td>x</td><td>y</td></tr>
</table>`)

	if len(rec.items) != 1 {
		t.Fatalf("items = %+v", rec.items)
	}
	tbl, ok := rec.items[0].(*recTable)
	if !ok {
		t.Fatalf("item = %T, want table", rec.items[0])
	}
	if tbl.Rows != 3 || tbl.Cols != 3 {
		t.Fatalf("grid = %dx%d, want 3x3", tbl.Rows, tbl.Cols)
	}
	if got := tbl.Cells[1][1].text(); got != "" {
		t.Errorf("padded cell = %q, want empty", got)
	}
	if got := tbl.Cells[2][1].text(); got != "y" {
		t.Errorf("cell[2][1] = %q", got)
	}
	for j := 0; j < 3; j++ {
		for _, r := range tbl.Cells[0][j].Runs {
			if !r.F.Bold {
				t.Errorf("header cell %d run %+v not bold", j, r)
			}
		}
	}
	for _, r := range tbl.Cells[1][0].Runs {
		if r.F.Bold {
			t.Errorf("body run %+v is bold", r)
		}
	}
}

func TestWalk_TableWithoutRows(t *testing.T) {
	t.Parallel()

	if rec := walk(t, `<table></table>`); len(rec.items) != 0 {
		t.Errorf("items = %+v, want none", rec.items)
	}
}

func TestWalk_TableCellAlignmentAndLinks(t *testing.T) {
	t.Parallel()

	rec := walk(t, `<table><tr><td style="text-align:center;">c</td><td style="text-align:Center;">C</td><td>see <a href="https://x.test">docs</a></td></tr></table>`)
	tbl := rec.items[0].(*recTable)

	if tbl.Aligns[0][0] != AlignCenter {
		t.Errorf("canonical center = %v", tbl.Aligns[0][0])
	}
	if tbl.Aligns[0][1] != AlignLeft {
		t.Errorf("non-canonical center = %v, want left", tbl.Aligns[0][1])
	}

	runs := tbl.Cells[0][2].Runs
	if len(runs) != 2 || runs[0].Text != "see " || runs[1].Href != "https://x.test" || runs[1].Text != "docs" {
		t.Errorf("cell runs = %+v", runs)
	}
}

func TestCellAlignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		style string
		want  Alignment
	}{
		{"text-align:left;", AlignLeft},
		{"text-align:center;", AlignCenter},
		{"text-align:right;", AlignRight},
		{"text-align:justify;", AlignJustify},
		{"text-align:Center;", AlignLeft},
		{"text-align:center", AlignLeft},
		{"text-align: center;", AlignLeft},
		{"", AlignLeft},
	}

	for _, tt := range tests {
		if got := CellAlignment(tt.style); got != tt.want {
			t.Errorf("CellAlignment(%q) = %v, want %v", tt.style, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Links and images
// ---------------------------------------------------------------------------

func TestWalk_Link(t *testing.T) {
	t.Parallel()

	runs := walk(t, `<p><a href="https://go.dev"> Go <b>site</b> </a></p>`).paragraphs()[0].Runs
	if len(runs) != 1 {
		t.Fatalf("runs = %+v", runs)
	}
	r := runs[0]
	if r.Text != "Gosite" || r.Href != "https://go.dev" {
		t.Errorf("link = %+v", r)
	}
	if r.F.Color != LinkColor || !r.F.Underline {
		t.Errorf("link formatting = %+v", r.F)
	}
}

func TestWalk_LinkedImage(t *testing.T) {
	t.Parallel()

	res := &fakeResolver{images: map[string]imageres.Image{"badge.png": {Path: "/cache/badge.png"}}}
	runs := walkWith(t, `<p><a href="https://ci.test"><img src="badge.png" alt="ci"></a></p>`, res).paragraphs()[0].Runs

	if len(runs) != 1 || runs[0].Image != "/cache/badge.png" || runs[0].Href != "https://ci.test" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestWalk_BlockImage(t *testing.T) {
	t.Parallel()

	res := &fakeResolver{images: map[string]imageres.Image{"a.png": {Path: "/abs/a.png"}}}
	rec := walkWith(t, `<p><img src="a.png" alt="Alt text"></p>`, res)

	if len(rec.items) != 1 {
		t.Fatalf("items = %+v", rec.items)
	}
	img, ok := rec.items[0].(recImage)
	if !ok || img.Path != "/abs/a.png" || img.Alt != "Alt text" {
		t.Errorf("item = %+v", rec.items[0])
	}
}

func TestWalk_InlineImage(t *testing.T) {
	t.Parallel()

	res := &fakeResolver{images: map[string]imageres.Image{"i.png": {Path: "/abs/i.png"}}}
	runs := walkWith(t, `<p>see <em><img src="i.png" alt="icon"></em></p>`, res).paragraphs()[0].Runs

	if len(runs) != 2 || runs[1].Image != "/abs/i.png" || runs[1].Text != "icon" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestWalk_ImageInsideText(t *testing.T) {
	t.Parallel()

	res := &fakeResolver{images: map[string]imageres.Image{"i.png": {Path: "/abs/i.png"}}}
	rec := walkWith(t, `<p>see <img src="i.png" alt="icon"> after</p>`, res)

	paras := rec.paragraphs()
	if len(paras) != 1 || len(rec.items) != 1 {
		t.Fatalf("items = %+v, want one paragraph", rec.items)
	}
	runs := paras[0].Runs
	if len(runs) != 3 || runs[0].Text != "see " || runs[1].Image != "/abs/i.png" || runs[2].Text != " after" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestWalk_ImagesOnlyParagraph(t *testing.T) {
	t.Parallel()

	res := &fakeResolver{images: map[string]imageres.Image{
		"a.png": {Path: "/abs/a.png"},
		"b.png": {Path: "/abs/b.png"},
	}}
	rec := walkWith(t, "<p><img src=\"a.png\">\n<img src=\"b.png\"></p>", res)

	if len(rec.items) != 2 {
		t.Fatalf("items = %+v, want two block images", rec.items)
	}
	for i, want := range []string{"/abs/a.png", "/abs/b.png"} {
		img, ok := rec.items[i].(recImage)
		if !ok || img.Path != want {
			t.Errorf("item[%d] = %+v, want image %s", i, rec.items[i], want)
		}
	}
}

func TestWalk_MissingImageInsideText(t *testing.T) {
	t.Parallel()

	res := imageres.New(imageres.WithCacheDir(t.TempDir()))
	doc, err := html.Parse(strings.NewReader(`<p>see <img src="missing.png" alt="x"> after</p>`))
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	if err := NewWalker(rec, res, WithBaseDir(t.TempDir())).Walk(context.Background(), doc); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	paras := rec.paragraphs()
	if len(paras) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(paras))
	}
	if got := paras[0].text(); got != "see [image not found: missing.png] after" {
		t.Errorf("text = %q", got)
	}
}

func TestWalk_MissingImagePlaceholder(t *testing.T) {
	t.Parallel()

	res := imageres.New(imageres.WithCacheDir(t.TempDir()))
	doc, err := html.Parse(strings.NewReader(`<p><img src="images/missing.png" alt="x"></p>`))
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	if err := NewWalker(rec, res, WithBaseDir(t.TempDir())).Walk(context.Background(), doc); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	paras := rec.paragraphs()
	if len(paras) != 1 {
		t.Fatalf("got %d paragraphs", len(paras))
	}
	if got := paras[0].text(); got != "[image not found: images/missing.png]" {
		t.Errorf("placeholder = %q", got)
	}
	if err := rec.Save(context.Background(), "out.docx"); err != nil {
		t.Errorf("Save() error = %v", err)
	}
}

func TestWalk_BackendImageFailure(t *testing.T) {
	t.Parallel()

	res := &fakeResolver{images: map[string]imageres.Image{"a.png": {Path: "/abs/a.png"}}}
	rec := walkWith(t, `<img src="a.png">`, res, func(r *recorder) { r.imageErr = errors.New("corrupt") })

	paras := rec.paragraphs()
	if len(paras) != 1 || paras[0].text() != "[image load failed: a.png]" {
		t.Errorf("paragraphs = %+v", paras)
	}
}

func TestPlaceholder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{imageres.ErrDownloadFailed, "[image download failed: s]"},
		{imageres.ErrImageNotFound, "[image not found: s]"},
		{imageres.ErrUnsupportedImage, "[unsupported image: s]"},
		{imageres.ErrRasterize, "[image load failed: s]"},
		{errors.New("other"), "[image load failed: s]"},
	}

	for _, tt := range tests {
		if got := Placeholder(tt.err, "s"); got != tt.want {
			t.Errorf("Placeholder(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Code blocks
// ---------------------------------------------------------------------------

func TestWalk_CodeBlock(t *testing.T) {
	t.Parallel()

	rec := walk(t, "<pre tabindex=\"0\"><code><span style=\"color:#d73a49\">func</span> main() {\n\n}\n</code></pre>")
	paras := rec.paragraphs()
	if len(paras) != 3 {
		t.Fatalf("got %d lines, want 3", len(paras))
	}
	first := paras[0].Runs
	if len(first) != 2 || first[0].Text != "func" || first[0].F.Color != "D73A49" || !first[0].F.Monospace {
		t.Errorf("first line = %+v", first)
	}
	if first[1].F.Color != "" {
		t.Errorf("uncolored text got %q", first[1].F.Color)
	}
	if len(paras[1].Runs) != 0 {
		t.Errorf("blank line = %+v", paras[1].Runs)
	}
	if paras[2].text() != "}" || paras[2].Style.Kind != BlockCode {
		t.Errorf("last line = %+v", paras[2])
	}
}

func TestExpandHex(t *testing.T) {
	t.Parallel()

	if got := expandHex("a1f"); got != "AA11FF" {
		t.Errorf("expandHex(a1f) = %q", got)
	}
	if got := expandHex("00ff00"); got != "00FF00" {
		t.Errorf("expandHex(00ff00) = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Pagination
// ---------------------------------------------------------------------------

func TestWalk_PaginatesLongParagraph(t *testing.T) {
	t.Parallel()

	words := make([]string, 0, 400)
	for i := 0; i < 400; i++ {
		words = append(words, "lorem"+strings.Repeat("x", i%7))
	}
	text := strings.Join(words, " ")

	pg := DefaultPaginator()
	rec := walk(t, "<p>"+text+"</p>", func(r *recorder) { r.paginator = &pg })

	var pages []string
	for _, it := range rec.items {
		p, ok := it.(recPage)
		if !ok {
			t.Fatalf("unexpected item %T", it)
		}
		pages = append(pages, p.Text)
	}

	n := utf8.RuneCountInString(text)
	if minPages := (n + DefaultMaxChars - 1) / DefaultMaxChars; len(pages) < minPages {
		t.Errorf("got %d pages, want at least %d", len(pages), minPages)
	}
	for i, p := range pages {
		if utf8.RuneCountInString(p) > DefaultMaxChars {
			t.Errorf("page %d has %d runes", i, utf8.RuneCountInString(p))
		}
	}
	if got := strings.Fields(strings.Join(pages, " ")); strings.Join(got, " ") != text {
		t.Error("pages do not reassemble into the original words")
	}
}

func TestWalk_ShortParagraphNotPaginated(t *testing.T) {
	t.Parallel()

	pg := DefaultPaginator()
	rec := walk(t, "<p>short</p>", func(r *recorder) { r.paginator = &pg })
	if len(rec.paragraphs()) != 1 {
		t.Errorf("items = %+v", rec.items)
	}
}

// ---------------------------------------------------------------------------
// Walk errors
// ---------------------------------------------------------------------------

func TestWalk_NoBody(t *testing.T) {
	t.Parallel()

	w := NewWalker(&recorder{}, &fakeResolver{})
	if err := w.Walk(context.Background(), &html.Node{Type: html.DocumentNode}); !errors.Is(err, ErrNoBody) {
		t.Errorf("error = %v, want %v", err, ErrNoBody)
	}
}

func TestWalk_CancelledContext(t *testing.T) {
	t.Parallel()

	doc, _ := html.Parse(strings.NewReader("<p>a</p><p>b</p>"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	if err := NewWalker(rec, &fakeResolver{}).Walk(ctx, doc); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want %v", err, context.Canceled)
	}
	if len(rec.items) != 0 {
		t.Errorf("items emitted after cancellation: %+v", rec.items)
	}
}

func TestWalk_DoesNotMutateTree(t *testing.T) {
	t.Parallel()

	src := `<h1>T</h1><p>a <b>b</b></p><table><tr><td>1</td></tr></table><ul><li>x</li></ul>`
	doc, _ := html.Parse(strings.NewReader(src))

	var before strings.Builder
	_ = html.Render(&before, doc)

	_ = NewWalker(&recorder{}, &fakeResolver{}).Walk(context.Background(), doc)

	var after strings.Builder
	_ = html.Render(&after, doc)
	if before.String() != after.String() {
		t.Error("walk modified the source tree")
	}
}
