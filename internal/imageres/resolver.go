// Package imageres turns image references found in a document into local
// raster files that office writers can embed.
//
// A reference may be a path relative to the source document, an absolute
// path, a file:// URL, a base64 data: URI or an http(s) URL. Remote images
// are fetched under a fixed wait budget. SVG is rasterized to PNG and
// formats the writers cannot embed (WebP, BMP, TIFF) are re-encoded to PNG.
package imageres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-md2office/internal/fileutil"
)

// DefaultTimeout is the wait budget for one remote image.
const DefaultTimeout = 5 * time.Second

// Rasterizer renders SVG markup into a PNG file at dst.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg []byte, dst string) error
}

// Resolver locates, downloads and converts images.
// A Resolver is not safe for concurrent use.
type Resolver struct {
	client      *http.Client
	timeout     time.Duration
	cacheDir    string
	browserSVG  bool
	rasterizers []Rasterizer
	browser     *BrowserRasterizer
	logger      *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout sets the wait budget for each remote fetch.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithCacheDir sets where downloaded and converted images are written.
func WithCacheDir(dir string) Option {
	return func(r *Resolver) {
		r.cacheDir = dir
	}
}

// WithHTTPClient sets the client used for remote fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithLogger sets the logger for degradations and fallbacks.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBrowserSVG appends a headless Chrome rasterizer to the chain, used
// when the pure-Go renderer fails.
func WithBrowserSVG(enabled bool) Option {
	return func(r *Resolver) {
		r.browserSVG = enabled
	}
}

// WithRasterizers replaces the SVG rasterizer chain.
func WithRasterizers(rs ...Rasterizer) Option {
	return func(r *Resolver) {
		r.rasterizers = rs
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		client:  &http.Client{},
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cacheDir == "" {
		r.cacheDir = DefaultCacheDir()
	}
	if r.rasterizers == nil {
		r.rasterizers = []Rasterizer{VectorRasterizer{}}
		if r.browserSVG {
			r.browser = NewBrowserRasterizer(r.timeout)
			r.rasterizers = append(r.rasterizers, r.browser)
		}
	}
	return r
}

// DefaultCacheDir returns temp/images beside the running executable.
func DefaultCacheDir() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join(os.TempDir(), "md2office", "images")
	}
	return filepath.Join(filepath.Dir(exe), "temp", "images")
}

// CacheDir returns the directory used for downloads and artifacts.
func (r *Resolver) CacheDir() string {
	return r.cacheDir
}

// Close releases the browser rasterizer, if one was started.
func (r *Resolver) Close() error {
	if r.browser != nil {
		return r.browser.Close()
	}
	return nil
}

// Resolve turns ref into a local raster image. baseDir anchors relative
// paths. The returned error wraps one of ErrDownloadFailed,
// ErrImageNotFound, ErrRasterize or ErrUnsupportedImage, or is the
// context error when ctx is done before work starts.
func (r *Resolver) Resolve(ctx context.Context, ref, baseDir string) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Image{}, fmt.Errorf("%w: empty reference", ErrImageNotFound)
	}

	path, err := r.locate(ctx, ref, baseDir)
	if err != nil {
		return Image{Source: ref}, err
	}

	img, err := r.normalize(ctx, path)
	img.Source = ref
	if strings.HasPrefix(ref, "data:") {
		// Decoded payloads are scratch files whatever happens next.
		if img.Path == path {
			img.Temporary = true
		} else {
			_ = os.Remove(path)
		}
	}
	return img, err
}

// locate returns a local file for ref, downloading or decoding as needed.
func (r *Resolver) locate(ctx context.Context, ref, baseDir string) (string, error) {
	switch {
	case fileutil.IsURL(ref):
		return r.fetch(ctx, ref)
	case strings.HasPrefix(ref, "data:"):
		return r.decodeDataURI(ref)
	case strings.HasPrefix(ref, "file://"):
		path, err := fileURLPath(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrImageNotFound, ref, err)
		}
		return existing(ref, path)
	}

	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	if fileutil.FileExists(path) {
		return path, nil
	}

	// Markdown renderers percent-encode link destinations ("my%20image.png").
	if unescaped, err := url.PathUnescape(ref); err == nil && unescaped != ref {
		if !filepath.IsAbs(unescaped) {
			unescaped = filepath.Join(baseDir, unescaped)
		}
		return existing(ref, unescaped)
	}
	return "", fmt.Errorf("%w: %s", ErrImageNotFound, ref)
}

func existing(ref, path string) (string, error) {
	if !fileutil.FileExists(path) {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, ref)
	}
	return path, nil
}

// fileURLPath converts a file:// URL into a local path.
func fileURLPath(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if u.Path == "" {
		return "", errors.New("empty path")
	}
	path := u.Path
	// file:///C:/dir/a.png parses to "/C:/dir/a.png"
	if runtime.GOOS == "windows" && len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}
