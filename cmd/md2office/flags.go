package main

import (
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// imageFlags holds image resolution flags.
type imageFlags struct {
	timeout    time.Duration
	cacheDir   string
	browserSVG bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common          commonFlags
	output          string
	format          string
	title           string
	timeout         time.Duration
	image           imageFlags
	stripBlankLines bool
	html            bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addImageFlags adds image flags to a FlagSet.
func addImageFlags(fs *flag.FlagSet, f *imageFlags) {
	fs.DurationVar(&f.timeout, "image-timeout", 0, "per-image download budget (e.g., 5s)")
	fs.StringVar(&f.cacheDir, "cache-dir", "", "directory for downloaded and converted images")
	fs.BoolVar(&f.browserSVG, "browser-svg", false, "render difficult SVG with headless Chrome")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.format, "format", "f", "", "output format: docx, pptx")
	fs.StringVar(&f.title, "title", "", "document title property")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-file conversion timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.stripBlankLines, "strip-blank-lines", false, "drop whitespace-only lines before rendering")
	fs.BoolVar(&f.html, "html", false, "also write the intermediate HTML")

	addCommonFlags(fs, &f.common)
	addImageFlags(fs, &f.image)

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
