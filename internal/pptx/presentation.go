// Package pptx builds PresentationML (.pptx) decks.
//
// The model is append-only: slides hold shapes (text boxes, pictures,
// tables) and text boxes hold paragraphs of runs. Nothing is serialized
// until Write, which emits a complete package with one master, one blank
// layout and one theme.
package pptx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"time"
)

// ErrImageFormat is returned for pictures that are not PNG, JPEG or GIF.
var ErrImageFormat = errors.New("unsupported picture format")

// Default fonts of the theme.
const (
	DefaultLatinFont     = "Calibri"
	DefaultEastAsianFont = "SimSun"
)

// Presentation is a deck under construction.
type Presentation struct {
	Width  EMU
	Height EMU
	// LatinFont and EastAsianFont become the theme's body and heading
	// fonts, which every run without an explicit font inherits.
	LatinFont     string
	EastAsianFont string
	Title         string
	Creator       string
	Created       time.Time

	slides []*Slide
}

// New returns an empty A4 portrait presentation.
func New() *Presentation {
	return &Presentation{
		Width:         A4Width,
		Height:        A4Height,
		LatinFont:     DefaultLatinFont,
		EastAsianFont: DefaultEastAsianFont,
	}
}

// AddSlide appends a blank slide.
func (p *Presentation) AddSlide() *Slide {
	s := &Slide{}
	p.slides = append(p.slides, s)
	return s
}

// Slides returns the slides in order.
func (p *Presentation) Slides() []*Slide { return p.slides }

// Shape is a TextBox, Picture or Table.
type Shape interface {
	bounds() Rect
}

// Rect positions a shape on its slide.
type Rect struct {
	X, Y, W, H EMU
}

func (r Rect) bounds() Rect { return r }

// Slide is one slide of the deck.
type Slide struct {
	shapes []Shape
}

// Shapes returns the slide's shapes in z-order.
func (s *Slide) Shapes() []Shape { return s.shapes }

// AddTextBox places a word-wrapping text box.
func (s *Slide) AddTextBox(x, y, w, h EMU) *TextBox {
	tb := &TextBox{Rect: Rect{x, y, w, h}, WordWrap: true}
	s.shapes = append(s.shapes, tb)
	return tb
}

// AddPicture places img at (x, y) scaled to width w; the height keeps the
// image's aspect ratio.
func (s *Slide) AddPicture(img Image, x, y, w EMU) *Picture {
	h := w
	if img.Width > 0 {
		h = EMU(int64(w) * int64(img.Height) / int64(img.Width))
	}
	pic := &Picture{Rect: Rect{x, y, w, h}, Image: img}
	s.shapes = append(s.shapes, pic)
	return pic
}

// AddTable places a rows x cols table. Every cell starts with one empty
// paragraph.
func (s *Slide) AddTable(rows, cols int, x, y, w, h EMU) *Table {
	t := &Table{Rect: Rect{x, y, w, h}, Rows: rows, Cols: cols}
	t.cells = make([][]*Cell, rows)
	for i := range t.cells {
		t.cells[i] = make([]*Cell, cols)
		for j := range t.cells[i] {
			t.cells[i][j] = &Cell{Paragraphs: []*Paragraph{{}}}
		}
	}
	s.shapes = append(s.shapes, t)
	return t
}

// TextBox is a rectangle of paragraphs.
type TextBox struct {
	Rect
	WordWrap   bool
	Paragraphs []*Paragraph
}

// AddParagraph appends an empty paragraph.
func (t *TextBox) AddParagraph() *Paragraph {
	p := &Paragraph{}
	t.Paragraphs = append(t.Paragraphs, p)
	return p
}

// Align is a paragraph's horizontal alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Align) attr() string {
	switch a {
	case AlignCenter:
		return "ctr"
	case AlignRight:
		return "r"
	case AlignJustify:
		return "just"
	default:
		return "l"
	}
}

// Bullet marks a list paragraph. The zero value is no bullet.
type Bullet struct {
	// Char is a bullet character such as "•".
	Char string
	// Number, when positive, is an arabic auto-number starting at this value.
	Number int
}

// Paragraph is a line of runs. Size, Bold and Italic apply to every run
// that does not set its own.
type Paragraph struct {
	Level  int
	Align  Align
	Size   int
	Bold   bool
	Italic bool
	Bullet Bullet
	Runs   []*Run
}

// AddRun appends a run of text.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{Text: text}
	p.Runs = append(p.Runs, r)
	return r
}

// Text returns the concatenated run text.
func (p *Paragraph) Text() string {
	var b bytes.Buffer
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Run is text with uniform character formatting.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	// Size is in points; zero inherits.
	Size int
	// Font overrides the theme's Latin font.
	Font string
	// Color and Highlight are RRGGBB hex strings.
	Color     string
	Highlight string
	// Link is an external hyperlink target.
	Link string
}

// Image is an encoded raster picture.
type Image struct {
	Data []byte
	// Ext is the media extension: png, jpeg or gif.
	Ext           string
	Width, Height int
}

// ReadImage loads a PNG, JPEG or GIF file.
func ReadImage(path string) (Image, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- resolved image path
	if err != nil {
		return Image{}, fmt.Errorf("reading picture: %w", err)
	}
	return DecodeImage(data)
}

// DecodeImage inspects encoded picture bytes.
func DecodeImage(data []byte) (Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrImageFormat, err)
	}
	switch format {
	case "png", "jpeg", "gif":
	default:
		return Image{}, fmt.Errorf("%w: %s", ErrImageFormat, format)
	}
	return Image{Data: data, Ext: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Picture is a placed image.
type Picture struct {
	Rect
	Image Image
	Descr string
	// Link makes the picture clickable.
	Link string
}

// Table is a grid of cells.
type Table struct {
	Rect
	Rows, Cols int
	// HeaderFill is the RRGGBB fill of the first row; empty for none.
	HeaderFill string

	cells [][]*Cell
}

// Cell returns the cell at row, col.
func (t *Table) Cell(row, col int) *Cell { return t.cells[row][col] }

// Cell holds paragraphs.
type Cell struct {
	Paragraphs []*Paragraph
}

// Paragraph returns the cell's first paragraph.
func (c *Cell) Paragraph() *Paragraph { return c.Paragraphs[0] }
