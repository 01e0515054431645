package render

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// cellAlignments maps a cell's raw style attribute to an alignment.
// Lookup is exact: "text-align:Center;" or a missing semicolon is left.
var cellAlignments = map[string]Alignment{
	"text-align:left;":    AlignLeft,
	"text-align:center;":  AlignCenter,
	"text-align:right;":   AlignRight,
	"text-align:justify;": AlignJustify,
}

// CellAlignment returns the alignment for a cell style attribute.
func CellAlignment(style string) Alignment {
	if a, ok := cellAlignments[style]; ok {
		return a
	}
	return AlignLeft
}

// emitTable transcribes an HTML table into a native one. The grid is
// rows = number of tr, cols = widest row; short rows keep empty cells.
// The first row is bold whether it holds th or td.
func (w *Walker) emitTable(ctx context.Context, table *html.Node, f Formatting) {
	rows := goquery.NewDocumentFromNode(table).Find("tr")
	if rows.Length() == 0 {
		return
	}

	cols := 0
	rows.Each(func(_ int, tr *goquery.Selection) {
		if n := tr.ChildrenFiltered("td, th").Length(); n > cols {
			cols = n
		}
	})
	if cols == 0 {
		return
	}

	t := w.backend.AddTable(rows.Length(), cols)

	rows.Each(func(i int, tr *goquery.Selection) {
		base := f
		if i == 0 {
			base = base.WithBold()
		}
		tr.ChildrenFiltered("td, th").Each(func(j int, td *goquery.Selection) {
			cell := t.Cell(i, j, CellAlignment(td.AttrOr("style", "")))
			s := cellSink(cell)
			for _, n := range td.Nodes {
				w.emitChildren(ctx, n, s, base)
			}
		})
	})
}
