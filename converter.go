package md2office

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2office/internal/docxout"
	"github.com/alnah/go-md2office/internal/imageres"
	"github.com/alnah/go-md2office/internal/pipeline"
	"github.com/alnah/go-md2office/internal/pptxout"
	"github.com/alnah/go-md2office/internal/render"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.TOCInjector          = (*pipeline.TOCInjection)(nil)
	_ render.Resolver               = (*imageres.Resolver)(nil)
)

// Converter orchestrates the Markdown to office document pipeline.
// Create with NewConverter(), use Convert() for conversion, and Close() when done.
// A Converter runs one conversion at a time.
type Converter struct {
	cfg           converterConfig
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	tocInjector   pipeline.TOCInjector
	resolver      *imageres.Resolver
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithFonts, WithCacheDir).
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		tocInjector:   pipeline.NewTOCInjection(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.slides.Validate(); err != nil {
		return nil, err
	}

	c.preprocessor = &pipeline.CommonMarkPreprocessor{StripBlankLines: c.cfg.stripBlankLines}
	c.resolver = imageres.New(
		imageres.WithTimeout(c.cfg.imageTimeout),
		imageres.WithCacheDir(c.cfg.cacheDir),
		imageres.WithHTTPClient(c.cfg.httpClient),
		imageres.WithBrowserSVG(c.cfg.browserSVG),
		imageres.WithLogger(c.cfg.logger),
	)
	return c, nil
}

// Convert renders input to a .docx or .pptx file.
// The context is used for cancellation and timeout.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if input.Output == "" {
		return nil, ErrNoOutput
	}
	format, err := input.format()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	markdown, sourceDir, err := c.loadSource(ctx, input)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(markdown) == "" {
		return nil, ErrEmptyMarkdown
	}

	htmlContent, err := c.renderHTML(ctx, markdown)
	if err != nil {
		return nil, err
	}

	doc, err := pipeline.ParseString(htmlContent)
	if err != nil {
		return nil, err
	}

	backend := c.newBackend(format, input.title())
	walker := render.NewWalker(backend, c.resolver,
		render.WithBaseDir(sourceDir),
		render.WithLogger(c.cfg.logger),
	)
	if err := walker.Walk(ctx, doc); err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	if err := backend.Save(ctx, input.Output); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	c.cfg.logger.Debug("document written", "path", input.Output, "format", string(format))

	return &ConvertResult{Path: input.Output, Format: format, HTML: []byte(htmlContent)}, nil
}

// ConvertFile converts the Markdown or HTML file at inPath to outPath,
// choosing the format from outPath's extension.
func (c *Converter) ConvertFile(ctx context.Context, inPath, outPath string) (*ConvertResult, error) {
	return c.Convert(ctx, Input{Path: inPath, Output: outPath})
}

// Close releases resources (the headless Chrome rasterizer, when started).
func (c *Converter) Close() error {
	if c.resolver != nil {
		return c.resolver.Close()
	}
	return nil
}

// loadSource returns the Markdown text of input and the directory its
// relative image paths resolve against. HTML files are converted to
// Markdown first.
func (c *Converter) loadSource(ctx context.Context, input Input) (markdown, sourceDir string, err error) {
	sourceDir = input.SourceDir
	if input.Markdown != "" || input.Path == "" {
		return input.Markdown, sourceDir, nil
	}

	data, err := os.ReadFile(input.Path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	if sourceDir == "" {
		sourceDir = filepath.Dir(input.Path)
	}

	switch strings.ToLower(filepath.Ext(input.Path)) {
	case ".html", ".htm":
		markdown, err = pipeline.NormalizeHTML(ctx, string(data))
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrHTMLParse, err)
		}
		return markdown, sourceDir, nil
	default:
		return string(data), sourceDir, nil
	}
}

// renderHTML runs the Markdown stages: preprocessing, HTML rendering,
// highlight markers and the [TOC] directive.
func (c *Converter) renderHTML(ctx context.Context, markdown string) (string, error) {
	mdContent := c.preprocessor.PreprocessMarkdown(ctx, markdown)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	htmlContent, err := c.htmlConverter.ToHTML(ctx, mdContent)
	if err != nil {
		return "", fmt.Errorf("converting to HTML: %w", err)
	}

	htmlContent, err = c.tocInjector.InjectTOC(ctx, htmlContent)
	if err != nil {
		return "", fmt.Errorf("injecting TOC: %w", err)
	}
	return htmlContent, nil
}

func (c *Converter) newBackend(format Format, title string) render.Backend {
	if format == FormatPPTX {
		return pptxout.New(
			pptxout.WithFonts(c.cfg.latinFont, c.cfg.eastAsianFont),
			pptxout.WithPaginator(c.cfg.slides.paginator()),
			pptxout.WithTitle(title),
			pptxout.WithLogger(c.cfg.logger),
		)
	}
	return docxout.New(
		docxout.WithFonts(c.cfg.latinFont, c.cfg.eastAsianFont),
		docxout.WithLogger(c.cfg.logger),
	)
}
