// Package config loads the YAML conversion settings used by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2office/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppName names the per-user config directory.
const AppName = "go-md2office"

// Field length limits.
const (
	MaxFontLength   = 100
	MaxPathLength   = 4096
	MaxFormatLength = 10
)

// Bounds for numeric fields.
const (
	MaxImageTimeout = 10 * time.Minute
	MinSlideChars   = 50
	MaxFontSize     = 400
)

// Config holds the conversion settings.
type Config struct {
	Fonts    FontsConfig    `yaml:"fonts"`
	Image    ImageConfig    `yaml:"image"`
	Slides   SlidesConfig   `yaml:"slides"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Output   OutputConfig   `yaml:"output"`
}

// FontsConfig names the typefaces applied to text runs.
type FontsConfig struct {
	Latin     string `yaml:"latin"`     // Default: Times New Roman
	EastAsian string `yaml:"eastAsian"` // Default: SimSun
}

// ImageConfig controls image resolution.
type ImageConfig struct {
	Timeout    time.Duration `yaml:"timeout"`    // Per download, default 5s
	CacheDir   string        `yaml:"cacheDir"`   // Empty = temp/images beside the executable
	BrowserSVG bool          `yaml:"browserSVG"` // Fall back to headless Chrome for SVG
}

// SlidesConfig controls presentation pagination.
type SlidesConfig struct {
	MaxChars     int `yaml:"maxChars"`     // Default 800
	BaseFontSize int `yaml:"baseFontSize"` // Default 36
	MinFontSize  int `yaml:"minFontSize"`  // Default 8
}

// MarkdownConfig controls source preprocessing.
type MarkdownConfig struct {
	StripBlankLines bool `yaml:"stripBlankLines"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = same as source
	Format     string `yaml:"format"`     // "docx" or "pptx", empty = from extension
}

// Validate checks field lengths and ranges. Called by LoadConfig, but
// available for callers who construct a Config by hand.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"fonts.latin", c.Fonts.Latin, MaxFontLength},
		{"fonts.eastAsian", c.Fonts.EastAsian, MaxFontLength},
		{"image.cacheDir", c.Image.CacheDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"output.format", c.Output.Format, MaxFormatLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Image.Timeout < 0 || c.Image.Timeout > MaxImageTimeout {
		return fmt.Errorf("%w: image.timeout must be between 0 and %s, got %s",
			ErrInvalidValue, MaxImageTimeout, c.Image.Timeout)
	}

	if c.Slides.MaxChars != 0 && c.Slides.MaxChars < MinSlideChars {
		return fmt.Errorf("%w: slides.maxChars must be at least %d, got %d",
			ErrInvalidValue, MinSlideChars, c.Slides.MaxChars)
	}
	for _, f := range []struct {
		name string
		size int
	}{
		{"slides.baseFontSize", c.Slides.BaseFontSize},
		{"slides.minFontSize", c.Slides.MinFontSize},
	} {
		if f.size < 0 || f.size > MaxFontSize {
			return fmt.Errorf("%w: %s must be between 0 and %d, got %d",
				ErrInvalidValue, f.name, MaxFontSize, f.size)
		}
	}
	if c.Slides.BaseFontSize != 0 && c.Slides.MinFontSize > c.Slides.BaseFontSize {
		return fmt.Errorf("%w: slides.minFontSize (%d) exceeds slides.baseFontSize (%d)",
			ErrInvalidValue, c.Slides.MinFontSize, c.Slides.BaseFontSize)
	}

	switch strings.ToLower(c.Output.Format) {
	case "", "docx", "pptx":
	default:
		return fmt.Errorf("%w: output.format %q (must be docx or pptx)", ErrInvalidValue, c.Output.Format)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration where every field defers to the
// converter defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched in the current directory then the user config
// directory. There is no silent fallback when nothing is found.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := unmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SearchPaths lists the files tried for a config name, in lookup order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
