package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	md2office "github.com/alnah/go-md2office"
	"github.com/alnah/go-md2office/internal/config"
	"github.com/alnah/go-md2office/internal/fileutil"
	"github.com/alnah/go-md2office/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput   = errors.New("no input specified")
	ErrNoFiles   = errors.New("no convertible files found")
	ErrUsage     = errors.New("invalid usage")
	ErrWriteHTML = errors.New("failed to write HTML file")
)

// Converter is the part of md2office.Converter the CLI drives.
type Converter interface {
	Convert(ctx context.Context, input md2office.Input) (*md2office.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ Converter = (*md2office.Converter)(nil)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// conversionParams groups parameters shared across a batch.
type conversionParams struct {
	format md2office.Format
	title  string
	html   bool
}

// runConvertCmd parses flags, loads configuration and converts every
// discovered file.
func runConvertCmd(ctx context.Context, args []string, deps *Dependencies) error {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return runConvert(ctx, positional, flags, deps)
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, deps *Dependencies) error {
	if len(positionalArgs) > 1 {
		return fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(positionalArgs))
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := resolveFormat(flags.format, flags.output, cfg.Output.Format)
	if err != nil {
		return err
	}

	if len(positionalArgs) == 0 {
		return ErrNoInput
	}
	inputPath := positionalArgs[0]
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir, format)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoFiles, inputPath)
	}

	logger := newLogger(deps.Stderr, flags.common.quiet, flags.common.verbose)
	conv, err := md2office.NewConverter(converterOptions(cfg, flags, logger)...)
	if err != nil {
		return err
	}
	defer conv.Close()

	params := &conversionParams{format: format, title: flags.title, html: flags.html}
	results := convertBatch(ctx, conv, files, params, deps)

	failed := printResults(results, flags.common.quiet, flags.common.verbose, deps)
	switch {
	case failed == 0:
		return nil
	case len(results) == 1:
		return results[0].Err
	default:
		return fmt.Errorf("%d conversion(s) failed", failed)
	}
}

// loadConfig loads the named config, or the defaults when name is empty.
func loadConfig(name string) (*config.Config, error) {
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		hint := ""
		if errors.Is(err, config.ErrConfigNotFound) {
			hint = hints.ForConfigNotFound(config.SearchPaths(name))
		}
		return nil, fmt.Errorf("loading config: %w%s", err, hint)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.image.timeout > 0 {
		cfg.Image.Timeout = flags.image.timeout
	}
	if flags.image.cacheDir != "" {
		cfg.Image.CacheDir = flags.image.cacheDir
	}
	if flags.image.browserSVG {
		cfg.Image.BrowserSVG = true
	}
	if flags.stripBlankLines {
		cfg.Markdown.StripBlankLines = true
	}
}

// resolveFormat picks the output format: the --format flag, then the
// extension of an output file, then the config, then docx.
func resolveFormat(flagFormat, output, cfgFormat string) (md2office.Format, error) {
	if flagFormat != "" {
		return md2office.ParseFormat(flagFormat)
	}
	if f, err := md2office.FormatFromPath(output); err == nil {
		return f, nil
	}
	if cfgFormat != "" {
		return md2office.ParseFormat(cfgFormat)
	}
	return md2office.FormatDOCX, nil
}

// resolveOutputDir returns the output flag, or the configured default.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// converterOptions translates configuration into converter options.
func converterOptions(cfg *config.Config, flags *convertFlags, logger *slog.Logger) []md2office.Option {
	opts := []md2office.Option{
		md2office.WithLogger(logger),
		md2office.WithFonts(cfg.Fonts.Latin, cfg.Fonts.EastAsian),
		md2office.WithCacheDir(cfg.Image.CacheDir),
		md2office.WithBrowserSVG(cfg.Image.BrowserSVG),
		md2office.WithStripBlankLines(cfg.Markdown.StripBlankLines),
		md2office.WithSlideLayout(md2office.SlideLayout{
			MaxChars:     cfg.Slides.MaxChars,
			BaseFontSize: cfg.Slides.BaseFontSize,
			MinFontSize:  cfg.Slides.MinFontSize,
		}),
	}
	if cfg.Image.Timeout > 0 {
		opts = append(opts, md2office.WithImageTimeout(cfg.Image.Timeout))
	}
	if flags.timeout > 0 {
		opts = append(opts, md2office.WithTimeout(flags.timeout))
	}
	return opts
}

// newLogger returns a text logger on w: warnings by default, debug with
// verbose, errors only with quiet.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// convertBatch converts files one after another. Remaining files are
// marked failed once ctx is done.
func convertBatch(ctx context.Context, conv Converter, files []FileToConvert, params *conversionParams, deps *Dependencies) []ConversionResult {
	results := make([]ConversionResult, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			results[i] = ConversionResult{InputPath: f.InputPath, OutputPath: f.OutputPath, Err: err}
			continue
		}
		results[i] = convertFile(ctx, conv, f, params, deps)
	}
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv Converter, f FileToConvert, params *conversionParams, deps *Dependencies) ConversionResult {
	start := deps.Now()
	result := ConversionResult{InputPath: f.InputPath, OutputPath: f.OutputPath}

	convResult, err := conv.Convert(ctx, md2office.Input{
		Path:   f.InputPath,
		Output: f.OutputPath,
		Format: params.format,
		Title:  params.title,
	})
	if err != nil {
		result.Err = err
		result.Duration = deps.Now().Sub(start)
		return result
	}

	if params.html {
		if err := fileutil.WriteFileAtomic(htmlOutputPath(f.OutputPath), convResult.HTML); err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrWriteHTML, err)
		}
	}
	result.Duration = deps.Now().Sub(start)
	return result
}

// htmlOutputPath returns the HTML path beside an output document.
func htmlOutputPath(outPath string) string {
	return strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".html"
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns the failure count.
// A lone failure is left for the caller to report.
func printResults(results []ConversionResult, quiet, verbose bool, deps *Dependencies) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			if len(results) > 1 {
				fmt.Fprintf(deps.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			}
			continue
		}
		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(deps.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(deps.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(deps.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}
	return summary.Failed
}
