// Package md2office converts Markdown documents to Word (.docx) and
// PowerPoint (.pptx) files.
//
// # Quick Start
//
// Create a converter, convert markdown, and close when done:
//
//	conv, err := md2office.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	_, err = conv.Convert(ctx, md2office.Input{
//	    Markdown: "# Hello\n\nWorld",
//	    Output:   "hello.docx",
//	})
//
// The output format follows Input.Format, or the output extension when
// Format is empty. The result carries the intermediate HTML for debugging.
//
// # Conversion Pipeline
//
//  1. Markdown preprocessing (line normalization, ==highlight== syntax)
//  2. Markdown to HTML via Goldmark (GFM tables, footnotes, code
//     highlighting), with raw HTML sanitized
//  3. [TOC] expansion into a numbered list of heading links
//  4. A depth-first walk of the HTML tree that appends paragraphs, runs,
//     tables and pictures to the document
//  5. Serialization, with default fonts applied to every run
//
// Documents flow across A4 pages. Presentations put every top-level block
// on its own slide, spread long paragraphs over several slides and size
// their font by length.
//
// # Images
//
// Local paths, file:// and data: URIs, and http(s) URLs are accepted.
// Remote downloads have a per-image deadline (WithImageTimeout). SVG is
// rasterized in pure Go, with an optional headless Chrome fallback
// (WithBrowserSVG). Images that cannot be used become bracketed
// placeholder text such as "[image not found: pics/a.png]"; the
// conversion still succeeds.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := md2office.NewConverter(
//	    md2office.WithFonts("Arial", "MS Gothic"),
//	    md2office.WithImageTimeout(10 * time.Second),
//	    md2office.WithSlideLayout(md2office.SlideLayout{MaxChars: 600}),
//	    md2office.WithLogger(slog.Default()),
//	)
//
// # Error Handling
//
// Errors can be checked with errors.Is:
//
//	_, err := conv.Convert(ctx, input)
//	if errors.Is(err, md2office.ErrEmptyMarkdown) {
//	    // handle empty input
//	}
//
// Available sentinel errors:
//   - ErrEmptyMarkdown: input has no content
//   - ErrNoOutput: no output path given
//   - ErrUnsupportedFormat: format is neither docx nor pptx
//   - ErrReadInput: input file could not be read
//   - ErrHTMLConversion: Markdown rendering failed
//   - ErrHTMLParse: HTML could not be parsed
//   - ErrWriteOutput: output file could not be written
//   - ErrInvalidSlideLayout: slide layout values are inconsistent
package md2office
