package md2office

import (
	"errors"

	"github.com/alnah/go-md2office/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown      = errors.New("markdown content cannot be empty")
	ErrNoOutput           = errors.New("output path cannot be empty")
	ErrUnsupportedFormat  = errors.New("unsupported output format")
	ErrReadInput          = errors.New("failed to read input file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrHTMLConversion     = pipeline.ErrHTMLConversion
	ErrHTMLParse          = pipeline.ErrHTMLParse
	ErrInvalidSlideLayout = errors.New("invalid slide layout")
)
