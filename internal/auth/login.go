package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/keywordlab/harvest/internal/browser"
	"github.com/rs/zerolog/log"
)

// LoginOptions configures an interactive cookie-capture login.
type LoginOptions struct {
	// SessionName is the name the captured session is saved under.
	SessionName string
	// URL is the login page to open.
	URL string
	// WaitSelector, when set, marks login completion once visible
	// (e.g. a dashboard element). Empty means wait for Enter on stdin.
	WaitSelector string
	// Timeout bounds the whole manual flow.
	Timeout time.Duration
}

// InteractiveLogin opens a visible browser, lets the operator complete
// the login by hand (including any second factor), then captures and
// saves the resulting cookies.
func InteractiveLogin(ctx context.Context, opts LoginOptions) (*SessionData, error) {
	if opts.SessionName == "" {
		return nil, fmt.Errorf("session name is required")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("login URL is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	sess, err := browser.Open(ctx, browser.Options{
		Visibility: browser.Visible,
		Width:      1280,
		Height:     720,
	})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	pageCtx := sess.Context()
	log.Info().Str("session", opts.SessionName).Str("url", opts.URL).
		Msg("Opening browser for manual login")

	if err := chromedp.Run(pageCtx, network.Enable(), chromedp.Navigate(opts.URL)); err != nil {
		return nil, fmt.Errorf("failed to navigate to login page: %w", err)
	}

	if opts.WaitSelector != "" {
		log.Info().Str("selector", opts.WaitSelector).Msg("Waiting for login completion")
		if err := chromedp.Run(pageCtx, chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery)); err != nil {
			return nil, fmt.Errorf("login timed out or failed: %w", err)
		}
	} else {
		fmt.Println("\nComplete the login in the browser, then press Enter here...")
		fmt.Scanln()
	}

	data, err := CaptureCookies(pageCtx, opts.SessionName, opts.URL)
	if err != nil {
		return nil, err
	}
	if err := SaveSession(data); err != nil {
		return nil, err
	}

	log.Info().Int("cookies", len(data.Cookies)).Str("session", opts.SessionName).
		Msg("Login session saved")
	return data, nil
}
