package imageres

import (
	"errors"
	"io/fs"
	"os"
)

// Image is a local raster file ready for insertion into a document.
type Image struct {
	// Path is the raster file on disk.
	Path string
	// Temporary marks conversion artifacts (rasterized SVG, re-encoded
	// formats) that can be removed once the picture is embedded.
	Temporary bool
	// Source is the reference as written in the document.
	Source string
}

// Cleanup removes the file when it is a temporary artifact.
// Missing files are not an error.
func (img Image) Cleanup() error {
	if !img.Temporary || img.Path == "" {
		return nil
	}
	if err := os.Remove(img.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
