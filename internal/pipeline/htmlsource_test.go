package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestNormalizeHTML(t *testing.T) {
	t.Parallel()

	got, err := NormalizeHTML(context.Background(), `<html><body><h1>Title</h1><p>Hello <strong>world</strong></p></body></html>`)
	if err != nil {
		t.Fatalf("NormalizeHTML() error = %v", err)
	}
	for _, want := range []string{"# Title", "**world**"} {
		if !strings.Contains(got, want) {
			t.Errorf("NormalizeHTML() missing %q in %q", want, got)
		}
	}
}

func TestNormalizeHTML_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NormalizeHTML(ctx, "<p>x</p>"); !errors.Is(err, context.Canceled) {
		t.Errorf("NormalizeHTML() error = %v, want context.Canceled", err)
	}
}

func TestParseString(t *testing.T) {
	t.Parallel()

	doc, err := ParseString("<p>one</p><p>two</p>")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if doc.Type != html.DocumentNode {
		t.Fatalf("root type = %v, want DocumentNode", doc.Type)
	}

	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if count != 2 {
		t.Errorf("paragraphs = %d, want 2", count)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestParse_ReadError(t *testing.T) {
	t.Parallel()

	_, err := Parse(failingReader{})
	if !errors.Is(err, ErrHTMLParse) {
		t.Errorf("Parse() error = %v, want ErrHTMLParse", err)
	}
}
