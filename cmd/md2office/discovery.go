package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2office "github.com/alnah/go-md2office"
)

// ErrInvalidExtension is returned for a single input file the CLI cannot read.
var ErrInvalidExtension = errors.New("file must have .md, .markdown, .html or .htm extension")

// inputExtensions lists the convertible input extensions.
var inputExtensions = map[string]struct{}{
	".md":       {},
	".markdown": {},
	".html":     {},
	".htm":      {},
}

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles finds all files to convert. Directories are walked
// recursively and mirrored under outputDir.
func discoverFiles(inputPath, outputDir string, format md2office.Format) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateInputExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "", format)
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		if validateInputExtension(path) != nil {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath, format)
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath})
		return nil
	})
	return files, err
}

// resolveOutputPath determines the output path for an input file. An
// outputDir ending in the format's extension names the file itself.
func resolveOutputPath(inputPath, outputDir, baseInputDir string, format md2office.Format) string {
	ext := "." + string(format)
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+ext)
	}

	if baseInputDir == "" && strings.EqualFold(filepath.Ext(outputDir), ext) {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base+ext)
		}
	}

	return filepath.Join(outputDir, base+ext)
}

// validateInputExtension checks that the file has a convertible extension.
func validateInputExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := inputExtensions[ext]; !ok {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}
