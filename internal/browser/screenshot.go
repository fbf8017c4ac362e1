package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// ScreenshotPath builds the canonical screenshot file path:
// {dir}/{source}-{slug}-{variant}.png. variant distinguishes chart
// index, full-page fallback, or error-state captures.
func ScreenshotPath(dir, source, slug, variant string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s-%s.png", source, slug, variant))
}

// CaptureElement screenshots the first element matching sel into path.
func CaptureElement(ctx context.Context, sel, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.Screenshot(sel, &buf, chromedp.NodeVisible, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("element screenshot %q: %w", sel, err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	log.Debug().Str("path", path).Str("selector", sel).Msg("Element screenshot saved")
	return nil
}

// CaptureFullPage screenshots the entire page into path. It is the
// universal fallback when no selector candidate resolves: something is
// always produced for the analyst, even off a broken page.
func CaptureFullPage(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return fmt.Errorf("full-page screenshot: %w", err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	log.Debug().Str("path", path).Msg("Full-page screenshot saved")
	return nil
}
