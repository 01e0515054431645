package imageres

import "errors"

// Sentinel errors for image resolution. Callers map them to placeholder text.
var (
	ErrDownloadFailed   = errors.New("image download failed")
	ErrImageNotFound    = errors.New("image not found")
	ErrRasterize        = errors.New("SVG rasterization failed")
	ErrUnsupportedImage = errors.New("unsupported image")
	ErrBrowserConnect   = errors.New("failed to connect to browser")
)
