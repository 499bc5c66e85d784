// Package capture renders the served comparison page to a PNG with headless Chromium.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/regional-events/internal/logger"
)

const (
	DefaultWidth   = 1024
	DefaultHeight  = 768
	DefaultTimeout = 30 * time.Second
)

// readySelector matches the table, or the error paragraph when rendering failed
const readySelector = `#table, p.error`

// Options defines one screenshot
type Options struct {
	URL        string // page to capture, e.g. "http://127.0.0.1:8080/?base=japan&target=korea"
	OutputPath string

	// Viewport in pixels; the screenshot covers the full page height.
	Width  int
	Height int

	Timeout time.Duration
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: output path is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// PNG navigates headless Chromium to opts.URL, waits for the table and writes a
// full-page screenshot to opts.OutputPath.
func PNG(parent context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	start := time.Now()
	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: running chromium: %w", err)
	}
	logger.RecordTiming("capture.screenshot", time.Since(start))

	if dir := filepath.Dir(opts.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("capture: creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: writing PNG: %w", err)
	}

	logger.Info("Captured screenshot", logger.Fields{"url": opts.URL, "output": opts.OutputPath, "bytes": len(png)})
	return nil
}
