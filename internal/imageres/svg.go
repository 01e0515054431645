package imageres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"reflect"
	"regexp"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/alnah/go-md2office/internal/fileutil"
)

// FallbackFontFamily replaces font-family on SVG groups so that text in
// CJK and Indic scripts renders with a font that is usually installed.
const FallbackFontFamily = "Microsoft YaHei,MS Mincho,Malgun Gothic,Nirmala UI,Verdana,Geneva,DejaVu Sans,sans-serif"

const (
	// svgScale renders at 300 DPI relative to the 96 DPI CSS pixel.
	svgScale = 300.0 / 96.0
	// maxRasterSide bounds either side of a rasterized SVG.
	maxRasterSide = 4096
)

var (
	groupTag       = regexp.MustCompile(`<g\b[^>]*>`)
	fontFamilyAttr = regexp.MustCompile(`\bfont-family\s*=\s*("[^"]*"|'[^']*')`)
	textElement    = regexp.MustCompile(`<(?:[A-Za-z][\w.-]*:)?text[\s/>]`)
)

// ErrSVGText is returned by VectorRasterizer for SVG holding <text>, which
// it would silently leave out of the picture.
var ErrSVGText = errors.New("SVG text is not drawn by the vector rasterizer")

// SanitizeFonts rewrites the font-family attribute of every <g> element
// that has one. Other elements are left alone.
func SanitizeFonts(svg []byte) []byte {
	replacement := []byte(`font-family="` + FallbackFontFamily + `"`)
	return groupTag.ReplaceAllFunc(svg, func(tag []byte) []byte {
		return fontFamilyAttr.ReplaceAll(tag, replacement)
	})
}

// rasterizeSVG sanitizes the SVG at path and renders it to a PNG in the
// cache directory, trying each rasterizer in order.
func (r *Resolver) rasterizeSVG(ctx context.Context, path string) (Image, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from the resolver
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %v", ErrRasterize, path, err)
	}
	svg := SanitizeFonts(raw)

	dst, err := fileutil.CreateTempPath(r.cacheDir, stem(path), "png")
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %v", ErrRasterize, path, err)
	}

	var errs []error
	for _, rz := range r.rasterizers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := rz.Rasterize(ctx, svg, dst); err != nil {
			r.logger.Warn("SVG rasterizer failed", "src", path, "rasterizer", rasterizerName(rz), "error", err)
			errs = append(errs, err)
			continue
		}
		return Image{Path: dst, Temporary: true}, nil
	}

	_ = os.Remove(dst)
	if len(errs) == 0 {
		errs = append(errs, errors.New("no rasterizer configured"))
	}
	return Image{}, fmt.Errorf("%w: %s: %v", ErrRasterize, path, errors.Join(errs...))
}

func rasterizerName(rz Rasterizer) string {
	t := reflect.TypeOf(rz)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// VectorRasterizer renders SVG in pure Go with oksvg and rasterx.
// It covers paths and basic shapes. SVG with <text> elements is refused
// with ErrSVGText so the next rasterizer, or a placeholder, takes over.
type VectorRasterizer struct{}

// Rasterize implements Rasterizer.
func (VectorRasterizer) Rasterize(ctx context.Context, svg []byte, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if textElement.Match(svg) {
		return ErrSVGText
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return fmt.Errorf("parsing SVG: %w", err)
	}

	w, h := rasterSize(icon.ViewBox.W, icon.ViewBox.H)
	if w == 0 || h == 0 {
		return errors.New("SVG has no usable viewBox")
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	icon.Draw(rasterx.NewDasher(w, h, rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())), 1)

	return writePNG(dst, rgba)
}

// rasterSize scales a viewBox to 300 DPI, bounded by maxRasterSide.
func rasterSize(vw, vh float64) (int, int) {
	if vw <= 0 || vh <= 0 || math.IsNaN(vw) || math.IsNaN(vh) {
		return 0, 0
	}
	scale := svgScale
	if longest := math.Max(vw, vh) * scale; longest > maxRasterSide {
		scale = maxRasterSide / math.Max(vw, vh)
	}
	return int(math.Round(vw * scale)), int(math.Round(vh * scale))
}
