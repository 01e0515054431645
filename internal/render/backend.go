package render

import (
	"context"

	"github.com/alnah/go-md2office/internal/imageres"
)

// Alignment is the horizontal alignment of a paragraph or table cell.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// BlockKind tells a backend what a paragraph represents so it can pick
// styles and font sizes.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockQuote
	BlockCode
	BlockFallback
)

// ParagraphStyle describes a paragraph container.
type ParagraphStyle struct {
	Kind BlockKind
	// Level is 1-6 for headings and the 0-based nesting depth for list items.
	Level int
	// Ordered and Index describe a numbered list item (Index is 1-based).
	Ordered bool
	Index   int
	Align   Alignment
	// TextLen is the rune count of the block's text, for backends that size
	// fonts by length.
	TextLen int
}

// Backend is an output document under construction. The walker only ever
// appends: nothing handed out by a Backend is revisited once the walker
// has moved past it.
type Backend interface {
	// BeginBlock marks the start of a top-level block.
	BeginBlock()
	// AddParagraph opens a new paragraph container.
	AddParagraph(style ParagraphStyle) Paragraph
	// AddTable creates a rows x cols table with every cell present.
	AddTable(rows, cols int) Table
	// AddImage places a picture as a block of its own.
	AddImage(img imageres.Image, alt string) error
	// Paginate splits long text across pages. It returns nil when the
	// text fits or the format does not paginate.
	Paginate(text string) []string
	// AddPage places one chunk returned by Paginate on a page of its own.
	AddPage(chunk string)
	// AddRule emits a horizontal separator.
	AddRule()
	// Save serializes the document to path. It is called once.
	Save(ctx context.Context, path string) error
}

// Paragraph receives runs.
type Paragraph interface {
	AddText(text string, f Formatting)
	AddLink(text, href string, f Formatting)
	AddImage(img imageres.Image, alt string) error
	AddLinkedImage(img imageres.Image, href string) error
}

// Table hands out cell paragraphs. Row 0 is the header row.
type Table interface {
	Cell(row, col int, align Alignment) Paragraph
}

// Resolver turns an image reference into a local raster file.
type Resolver interface {
	Resolve(ctx context.Context, ref, baseDir string) (imageres.Image, error)
}
