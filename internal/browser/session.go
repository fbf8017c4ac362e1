// Package browser owns the Chrome process lifecycle: launch options,
// identity profiles, stealth configuration, and screenshot capture.
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Visibility selects how the browser window is presented.
type Visibility string

const (
	// Headless runs Chrome with no window at all.
	Headless Visibility = "headless"
	// Hidden runs a real (non-headless) window positioned off-screen:
	// harder to fingerprint than headless, without intruding on the
	// desktop.
	Hidden Visibility = "hidden"
	// Visible runs a normal window, for supervised sessions.
	Visible Visibility = "visible"
)

// Options configures one browser session.
type Options struct {
	Visibility Visibility
	// ProfileDir reuses a persistent user profile (existing login
	// cookies). Empty means a fresh isolated profile with no stored
	// identity.
	ProfileDir string
	UserAgent  string
	ChromePath string
	Width      int
	Height     int
}

// Session is one browser-process lifetime bound to one identity
// profile. It is passed explicitly into each adapter call; there is no
// process-wide browser handle.
type Session struct {
	opts       Options
	browserCtx context.Context
	cancels    []context.CancelFunc
}

// launchFlags maps session options to Chrome command-line flags.
func launchFlags(opts Options) map[string]any {
	flags := map[string]any{
		"no-sandbox":                    true,
		"disable-dev-shm-usage":         true,
		"disable-extensions":            true,
		"disable-default-apps":          true,
		"disable-popup-blocking":        true,
		"disable-background-networking": true,
		"disable-sync":                  true,
		"disable-breakpad":              true,
		"mute-audio":                    true,
		"log-level":                     "3",
		// The single most effective stealth flag: drops the
		// navigator.webdriver automation marker at the source.
		"disable-blink-features": "AutomationControlled",
		"disable-infobars":       true,
		"window-size":            fmt.Sprintf("%d,%d", opts.Width, opts.Height),
	}
	switch opts.Visibility {
	case Headless:
		flags["headless"] = "new"
		flags["disable-gpu"] = true
	case Hidden:
		flags["headless"] = false
		flags["window-position"] = "-32000,-32000"
	default:
		flags["headless"] = false
	}
	return flags
}

// Open launches Chrome with the given options and warms up a first
// browser context. A launch failure is fatal for the current task only
// and is reported to the caller.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1920, 1080
	}
	if opts.UserAgent == "" {
		opts.UserAgent = RandomUserAgent()
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.UserAgent(opts.UserAgent),
	}
	for name, value := range launchFlags(opts) {
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}

	chromePath := opts.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}
	if chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}

	if opts.ProfileDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.ProfileDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	sess := &Session{
		opts:       opts,
		browserCtx: browserCtx,
		cancels:    []context.CancelFunc{browserCancel, allocCancel},
	}

	// Warm up: this is the call that actually starts the process, so a
	// broken Chrome install fails here rather than mid-adapter.
	if err := chromedp.Run(browserCtx, InstallStealth(), chromedp.Navigate("about:blank")); err != nil {
		sess.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Debug().Str("visibility", string(opts.Visibility)).
		Bool("persistent_profile", opts.ProfileDir != "").
		Msg("Browser session opened")
	return sess, nil
}

// NewPage opens a fresh tab in this session and returns its context.
// The stealth script is installed before any navigation.
func (s *Session) NewPage(ctx context.Context) (context.Context, context.CancelFunc, error) {
	pageCtx, cancel := chromedp.NewContext(s.browserCtx)
	if err := chromedp.Run(pageCtx, InstallStealth()); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to open page: %w", err)
	}
	stop := context.AfterFunc(ctx, cancel)
	return pageCtx, func() { stop(); cancel() }, nil
}

// Context returns the session's root browser context, usable directly
// for single-tab flows.
func (s *Session) Context() context.Context {
	return s.browserCtx
}

// Close tears down every tab and the browser process.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	log.Debug().Msg("Browser session closed")
}
