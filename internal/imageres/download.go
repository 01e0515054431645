package imageres

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/alnah/go-md2office/internal/fileutil"
)

const (
	// maxDownloadSize caps a single remote image.
	maxDownloadSize = 32 << 20

	// sniffLen is how much of the payload is searched for an <svg tag.
	sniffLen = 1024

	userAgent = "go-md2office"
)

// validExtensions are the image types kept from Content-Type or the URL.
var validExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"webp": true, "bmp": true, "svg": true,
}

// fetch downloads rawURL into the cache directory. The download runs in its
// own goroutine bounded by the wait budget; when the budget expires the
// request context is cancelled and fetch returns ErrDownloadFailed.
func (r *Resolver) fetch(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		path string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		p, err := r.download(ctx, rawURL)
		done <- result{path: p, err: err}
	}()

	select {
	case <-ctx.Done():
		r.logger.Warn("image download abandoned", "src", rawURL, "timeout", r.timeout, "error", ctx.Err())
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, ctx.Err())
	case res := <-done:
		if res.err != nil {
			r.logger.Warn("image download failed", "src", rawURL, "error", res.err)
			return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, res.err)
		}
		r.logger.Debug("image downloaded", "src", rawURL, "path", res.path)
		return res.path, nil
	}
}

func (r *Resolver) download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	if len(data) > maxDownloadSize {
		return "", fmt.Errorf("body exceeds %d bytes", maxDownloadSize)
	}

	name := urlBaseName(rawURL)
	ext := downloadExtension(resp.Header.Get("Content-Type"), name, data)
	dst := filepath.Join(r.cacheDir, strings.TrimSuffix(name, path.Ext(name))+"."+ext)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := fileutil.WriteFileAtomic(dst, data); err != nil {
		return "", err
	}
	return dst, nil
}

// downloadExtension picks the file extension for a downloaded image:
// the Content-Type subtype for image types, else the URL's extension, else
// jpg. Anything outside the known image set becomes svg when the payload
// looks like SVG and jpg otherwise.
func downloadExtension(contentType, name string, data []byte) string {
	ext := ""
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && (strings.HasPrefix(mediaType, "image/") || mediaType == "application/svg+xml") {
		ext = strings.ToLower(mediaType[strings.LastIndex(mediaType, "/")+1:])
		if ext == "svg+xml" {
			ext = "svg"
		}
	} else if e := path.Ext(name); e != "" {
		ext = strings.ToLower(strings.TrimPrefix(e, "."))
	} else {
		ext = "jpg"
	}

	if validExtensions[ext] {
		return ext
	}
	if looksLikeSVG(data) {
		return "svg"
	}
	return "jpg"
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.Contains(head, []byte("<svg")) {
		return true
	}
	return mimetype.Detect(data).Is("image/svg+xml")
}

// urlBaseName returns the last path element of rawURL, or "image".
func urlBaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "image"
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "image"
	}
	if err := fileutil.ValidateExtension(base); err != nil {
		return "image"
	}
	return base
}

// decodeDataURI writes a base64 data: URI into the cache directory.
func (r *Resolver) decodeDataURI(ref string) (string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", fmt.Errorf("%w: only base64 data URIs are supported", ErrUnsupportedImage)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: decoding data URI: %v", ErrUnsupportedImage, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty data URI", ErrUnsupportedImage)
	}

	ext := downloadExtension(strings.TrimSuffix(header, ";base64"), "", data)
	dst, err := fileutil.CreateTempPath(r.cacheDir, "inline", ext)
	if err != nil {
		return "", errors.Join(ErrUnsupportedImage, err)
	}
	if err := fileutil.WriteFileAtomic(dst, data); err != nil {
		return "", errors.Join(ErrUnsupportedImage, err)
	}
	return dst, nil
}
