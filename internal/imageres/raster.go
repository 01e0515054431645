package imageres

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/alnah/go-md2office/internal/fileutil"
)

// embeddable lists the formats both office writers accept as-is.
var embeddable = []string{"image/png", "image/jpeg", "image/gif"}

// reencodable maps formats the writers reject to their decoders.
var reencodable = map[string]func(f *os.File) (image.Image, error){
	"image/webp": func(f *os.File) (image.Image, error) { return webp.Decode(f) },
	"image/bmp":  func(f *os.File) (image.Image, error) { return bmp.Decode(f) },
	"image/tiff": func(f *os.File) (image.Image, error) { return tiff.Decode(f) },
}

// normalize converts the local file at path into something a writer can embed.
func (r *Resolver) normalize(ctx context.Context, path string) (Image, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".svg") || mt.Is("image/svg+xml") {
		return r.rasterizeSVG(ctx, path)
	}

	for _, m := range embeddable {
		if mt.Is(m) {
			return Image{Path: path}, nil
		}
	}

	for m, decode := range reencodable {
		if mt.Is(m) {
			return r.reencode(path, decode)
		}
	}

	return Image{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedImage, path, mt.String())
}

// reencode decodes path and writes it back as PNG into the cache directory.
func (r *Resolver) reencode(path string, decode func(f *os.File) (image.Image, error)) (Image, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the resolver
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, path, err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, path, err)
	}

	dst, err := fileutil.CreateTempPath(r.cacheDir, stem(path), "png")
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, path, err)
	}
	if err := writePNG(dst, img); err != nil {
		_ = os.Remove(dst)
		return Image{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, path, err)
	}

	r.logger.Debug("image re-encoded", "src", path, "path", dst)
	return Image{Path: dst, Temporary: true}, nil
}

func writePNG(dst string, img image.Image) error {
	out, err := os.Create(dst) // #nosec G304 -- dst is reserved in the cache directory
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// stem returns the file name of path without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
