package adapter

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/keywordlab/harvest/internal/pace"
)

// navigate loads a URL with a hard deadline. Navigation on these sites
// regularly hangs on third-party beacons, so the deadline is the only
// thing standing between one slow page and a stuck run.
func navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(navCtx, chromedp.Navigate(url))
}

func currentURL(ctx context.Context) (string, error) {
	var loc string
	err := chromedp.Run(ctx, chromedp.Location(&loc))
	return loc, err
}

func bodyText(ctx context.Context) (string, error) {
	var text string
	err := chromedp.Run(ctx, chromedp.Text("body", &text, chromedp.ByQuery))
	return text, err
}

func outerHTML(ctx context.Context, sel string) (string, error) {
	var html string
	err := chromedp.Run(ctx, chromedp.OuterHTML(sel, &html, chromedp.ByQuery))
	return html, err
}

// humanScrolls wheels the page down a few notches with jittered pauses.
func humanScrolls(ctx context.Context) error {
	n := 2 + rand.Intn(3)
	for i := 0; i < n; i++ {
		px := 100 + rand.Intn(200)
		if err := chromedp.Run(ctx, chromedp.Evaluate(
			fmt.Sprintf("window.scrollBy(0, %d);", px), nil)); err != nil {
			return err
		}
		if err := pace.Human(ctx, 500*time.Millisecond, 1500*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

func scrollToBottom(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.Evaluate(
		`window.scrollTo(0, document.body.scrollHeight);`, nil))
}

// typeSlowly sends the text one rune at a time with per-keystroke
// jitter, which is what keeps the autocomplete dropdown rendering.
func typeSlowly(ctx context.Context, sel, text string) error {
	for _, r := range text {
		if err := chromedp.Run(ctx, chromedp.SendKeys(sel, string(r), chromedp.ByQuery)); err != nil {
			return err
		}
		if err := pace.Human(ctx, 80*time.Millisecond, 250*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}
