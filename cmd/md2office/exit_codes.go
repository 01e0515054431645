package main

import (
	"context"
	"errors"
	"os"

	md2office "github.com/alnah/go-md2office"
	"github.com/alnah/go-md2office/internal/config"
	"github.com/alnah/go-md2office/internal/hints"
	flag "github.com/spf13/pflag"
)

// Exit codes for the md2office CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, unwritable output
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, md2office.ErrReadInput) ||
		errors.Is(err, md2office.ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoFiles) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, flag.ErrHelp) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, md2office.ErrEmptyMarkdown) ||
		errors.Is(err, md2office.ErrUnsupportedFormat) ||
		errors.Is(err, md2office.ErrInvalidSlideLayout) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint suffix for err, or "". Config lookup
// failures carry their hint already.
func hintFor(err error) string {
	switch {
	case errors.Is(err, md2office.ErrUnsupportedFormat):
		return hints.ForUnsupportedFormat(md2office.Formats())
	case errors.Is(err, md2office.ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	}
	return ""
}
