package md2office

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2office/internal/render"
)

// Format is an output document format.
type Format string

// Output formats.
const (
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
)

// Formats lists the supported output formats.
func Formats() []string {
	return []string{string(FormatDOCX), string(FormatPPTX)}
}

// ParseFormat returns the Format named by s (case-insensitive, leading
// dot allowed).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(s, "."))) {
	case FormatDOCX:
		return FormatDOCX, nil
	case FormatPPTX:
		return FormatPPTX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath derives the Format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Input contains conversion parameters.
type Input struct {
	Markdown  string // Markdown content (required unless Path is set)
	Path      string // Markdown or HTML file read when Markdown is empty
	SourceDir string // Anchors relative image paths (default: Path's directory)
	Output    string // Destination file (required)
	Format    Format // Empty = from Output's extension
	Title     string // Document title property (default: Output's base name)
}

// format resolves the output format of in.
func (in Input) format() (Format, error) {
	if in.Format != "" {
		return ParseFormat(string(in.Format))
	}
	return FormatFromPath(in.Output)
}

// title resolves the document title of in.
func (in Input) title() string {
	if in.Title != "" {
		return in.Title
	}
	base := filepath.Base(in.Output)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ConvertResult describes a finished conversion.
type ConvertResult struct {
	Path   string // Written document
	Format Format
	HTML   []byte // Intermediate HTML, for debugging
}

// SlideLayout configures presentation pagination.
type SlideLayout struct {
	MaxChars     int // Characters per slide before splitting
	BaseFontSize int // Points for an empty slide
	MinFontSize  int // Floor for long slides
}

// DefaultSlideLayout returns the 800-character, 36pt/8pt layout.
func DefaultSlideLayout() SlideLayout {
	p := render.DefaultPaginator()
	return SlideLayout{MaxChars: p.MaxChars, BaseFontSize: p.BaseFontSize, MinFontSize: p.MinFontSize}
}

// Validate checks that the layout can paginate. Zero fields take the
// defaults.
func (s SlideLayout) Validate() error {
	if s.MaxChars < 0 || s.BaseFontSize < 0 || s.MinFontSize < 0 {
		return fmt.Errorf("%w: negative value in %+v", ErrInvalidSlideLayout, s)
	}
	if s.BaseFontSize > 0 && s.MinFontSize > s.BaseFontSize {
		return fmt.Errorf("%w: min font size %d exceeds base %d", ErrInvalidSlideLayout, s.MinFontSize, s.BaseFontSize)
	}
	return nil
}

func (s SlideLayout) paginator() render.Paginator {
	p := render.DefaultPaginator()
	if s.MaxChars > 0 {
		p.MaxChars = s.MaxChars
	}
	if s.BaseFontSize > 0 {
		p.BaseFontSize = s.BaseFontSize
	}
	if s.MinFontSize > 0 {
		p.MinFontSize = s.MinFontSize
	}
	return p
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout         time.Duration
	imageTimeout    time.Duration
	latinFont       string
	eastAsianFont   string
	cacheDir        string
	browserSVG      bool
	stripBlankLines bool
	slides          SlideLayout
	httpClient      *http.Client
	logger          *slog.Logger
}

// defaultTimeout bounds a whole conversion when no timeout is specified.
const defaultTimeout = 2 * time.Minute

// WithTimeout sets the conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2office: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithImageTimeout sets the budget of each remote image download.
// Panics if d <= 0.
func WithImageTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2office: WithImageTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.imageTimeout = d
	}
}

// WithFonts sets the Latin and East Asian typefaces. Empty names keep the
// defaults (Times New Roman, SimSun).
func WithFonts(latin, eastAsian string) Option {
	return func(c *Converter) {
		c.cfg.latinFont = latin
		c.cfg.eastAsianFont = eastAsian
	}
}

// WithCacheDir sets where downloaded and converted images are stored.
func WithCacheDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.cacheDir = dir
	}
}

// WithBrowserSVG enables the headless Chrome fallback for SVG images the
// pure-Go rasterizer cannot draw.
func WithBrowserSVG(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.browserSVG = enabled
	}
}

// WithStripBlankLines removes whitespace-only lines from the Markdown
// source before rendering. Adjacent paragraphs then merge.
func WithStripBlankLines(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.stripBlankLines = enabled
	}
}

// WithSlideLayout sets presentation pagination.
func WithSlideLayout(s SlideLayout) Option {
	return func(c *Converter) {
		c.cfg.slides = s
	}
}

// WithHTTPClient sets the client used for image downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Converter) {
		c.cfg.httpClient = hc
	}
}

// WithLogger sets the logger for degradations and progress. The default
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.cfg.logger = l
		}
	}
}
