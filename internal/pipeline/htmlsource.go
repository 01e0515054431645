package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// ErrHTMLParse indicates the HTML could not be parsed into a tree.
var ErrHTMLParse = errors.New("HTML parsing failed")

// NormalizeHTML converts an HTML document to Markdown so HTML sources go
// through the same pipeline as Markdown ones.
func NormalizeHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	markdown, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return markdown, nil
}

// Parse builds the node tree the document walker consumes.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLParse, err)
	}
	return doc, nil
}

// ParseString is Parse over a string.
func ParseString(content string) (*html.Node, error) {
	return Parse(strings.NewReader(content))
}
