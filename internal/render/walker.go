// Package render walks a parsed HTML tree and drives an output Backend.
//
// The walk is depth-first. Block nodes open containers on the backend,
// inline nodes append runs to the current container, and character
// formatting accumulates down the recursion as an immutable Formatting
// value. One walker serves every output format: format differences live
// behind Backend.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2office/internal/dom"
	"github.com/alnah/go-md2office/internal/imageres"
)

// ErrNoBody is returned when the tree has no body element.
var ErrNoBody = errors.New("document has no body")

// Walker drives a Backend from an HTML tree.
type Walker struct {
	backend  Backend
	resolver Resolver
	baseDir  string
	logger   *slog.Logger
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithBaseDir sets the directory relative image paths resolve against.
func WithBaseDir(dir string) WalkerOption {
	return func(w *Walker) {
		w.baseDir = dir
	}
}

// WithLogger sets the logger used for degradations.
func WithLogger(l *slog.Logger) WalkerOption {
	return func(w *Walker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWalker creates a Walker writing to b and resolving images with r.
func NewWalker(b Backend, r Resolver, opts ...WalkerOption) *Walker {
	w := &Walker{
		backend:  b,
		resolver: r,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk emits every top-level child of the document's body. doc may be the
// document root or the body element itself. The tree is not modified.
func (w *Walker) Walk(ctx context.Context, doc *html.Node) error {
	body := dom.Body(doc)
	if body == nil {
		return ErrNoBody
	}

	for n := range body.ChildNodes() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n.Type == html.TextNode && dom.IsBlank(n.Data) {
			continue
		}
		if dom.Classify(n) == dom.KindIgnored {
			continue
		}
		w.backend.BeginBlock()
		w.emitBlock(ctx, n, Formatting{})
	}
	return ctx.Err()
}

// sink is the paragraph that inline content currently flows into.
// The paragraph is opened on first use, so containers with no content
// produce nothing.
type sink struct {
	open func() Paragraph
	cur  Paragraph
	// flat keeps block-level children inside the current paragraph
	// (table cells) instead of starting new containers.
	flat bool
}

func (w *Walker) newSink(style ParagraphStyle) *sink {
	return &sink{open: func() Paragraph { return w.backend.AddParagraph(style) }}
}

func cellSink(p Paragraph) *sink {
	return &sink{open: func() Paragraph { return p }, flat: true}
}

func (s *sink) paragraph() Paragraph {
	if s.cur == nil {
		s.cur = s.open()
	}
	return s.cur
}

// split ends the current paragraph; later inline content opens a new one.
func (s *sink) split() {
	if !s.flat {
		s.cur = nil
	}
}

// resolveImage resolves src and logs failures.
func (w *Walker) resolveImage(ctx context.Context, src string) (imageres.Image, error) {
	img, err := w.resolver.Resolve(ctx, src, w.baseDir)
	if err != nil {
		w.logger.Warn("image skipped", "src", src, "error", err)
	}
	return img, err
}

// release removes a temporary artifact once its bytes are embedded.
func (w *Walker) release(img imageres.Image) {
	if err := img.Cleanup(); err != nil {
		w.logger.Debug("temporary image not removed", "path", img.Path, "error", err)
	}
}

// Placeholder returns the bracketed text that stands in for an image that
// could not be placed.
func Placeholder(err error, src string) string {
	switch {
	case errors.Is(err, imageres.ErrDownloadFailed):
		return fmt.Sprintf("[image download failed: %s]", src)
	case errors.Is(err, imageres.ErrImageNotFound):
		return fmt.Sprintf("[image not found: %s]", src)
	case errors.Is(err, imageres.ErrUnsupportedImage):
		return fmt.Sprintf("[unsupported image: %s]", src)
	default:
		return fmt.Sprintf("[image load failed: %s]", src)
	}
}
