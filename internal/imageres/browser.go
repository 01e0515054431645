package imageres

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2office/internal/hints"
	"github.com/alnah/go-md2office/internal/process"
)

// Compile-time interface checks
var (
	_ Rasterizer = VectorRasterizer{}
	_ Rasterizer = (*BrowserRasterizer)(nil)
)

// BrowserRasterizer renders SVG with headless Chrome. It handles what the
// pure-Go renderer cannot (text, CSS, filters). Rod downloads Chromium on
// first use unless ROD_BROWSER_BIN points at an installed browser.
type BrowserRasterizer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// NewBrowserRasterizer creates a BrowserRasterizer. The browser starts on
// the first Rasterize call.
func NewBrowserRasterizer(timeout time.Duration) *BrowserRasterizer {
	return &BrowserRasterizer{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (b *BrowserRasterizer) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}
	b.launcher = l
	b.browser = browser
	return nil
}

// Close shuts the browser down and kills any leftover helper processes.
func (b *BrowserRasterizer) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		process.TerminateTree(b.launcher.PID())
		b.launcher.Kill()
		b.launcher = nil
	}
	return err
}

// Rasterize implements Rasterizer by screenshotting the <svg> element of a
// page that contains only the image.
func (b *BrowserRasterizer) Rasterize(ctx context.Context, svg []byte, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.ensureBrowser(); err != nil {
		return err
	}

	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("creating page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(timeout)

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: svgScale,
	}).Call(page); err != nil {
		return fmt.Errorf("setting viewport: %w", err)
	}

	doc := `<!DOCTYPE html><html><head><meta charset="utf-8"></head><body style="margin:0">` +
		string(svg) + `</body></html>`
	if err := page.SetDocumentContent(doc); err != nil {
		return fmt.Errorf("loading SVG: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("loading SVG: %w", err)
	}

	el, err := page.Element("svg")
	if err != nil {
		return fmt.Errorf("locating SVG element: %w", err)
	}
	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 100)
	if err != nil {
		return fmt.Errorf("capturing SVG: %w", err)
	}

	return os.WriteFile(dst, png, 0o600)
}
