package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/keywordlab/harvest/internal/auth"
	"github.com/keywordlab/harvest/internal/browser"
	"github.com/keywordlab/harvest/internal/pace"
	"github.com/keywordlab/harvest/internal/report"
	"github.com/keywordlab/harvest/internal/selector"
	"github.com/keywordlab/harvest/pkg/models"
)

// loginPoll bounds the wait for a manual sign-in (2FA prompts included)
// when no stored credentials can complete the flow automatically.
const loginPoll = 2 * time.Minute

// GSC captures Search Console performance charts for a page and
// extracts its top queries.
type GSC struct {
	Deps

	Property   string // resource id, e.g. sc-domain:example.com or a URL-prefix property
	BaseURL    string
	Months     int
	CredSite   string // credentials key for the automated Google login
	NavTimeout time.Duration
	Budget     time.Duration
	LoadWait   time.Duration
}

func (g *GSC) Name() string { return "gsc" }

// reportURL builds the performance report deep link. For URL tasks the
// report is filtered to the exact page; keyword tasks get the
// property-wide view.
func (g *GSC) reportURL(task models.Task) string {
	v := url.Values{}
	v.Set("resource_id", g.Property)
	v.Set("metrics", "CLICKS,IMPRESSIONS,POSITION")
	v.Set("breakdown", "query")
	if task.Mode == models.ModeURL {
		v.Set("page", "*"+task.Raw)
	}
	v.Set("num_of_months", strconv.Itoa(g.Months))
	return g.BaseURL + "?" + v.Encode()
}

func (g *GSC) Run(ctx context.Context, sess *browser.Session, task models.Task) ([]models.ExtractionResult, error) {
	page, cancel, err := sess.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	target := g.reportURL(task)
	if err := g.Pacer.Wait(ctx, target); err != nil {
		return nil, err
	}
	if err := navigate(page, target, g.NavTimeout); err != nil {
		return nil, fmt.Errorf("gsc: navigate: %w", err)
	}
	if err := g.ensureSignedIn(page, target); err != nil {
		return nil, err
	}

	if err := humanScrolls(page); err != nil {
		return nil, err
	}
	// SPA keeps painting well past load; give the charts time to settle.
	if err := pace.Human(page, g.LoadWait/2, g.LoadWait); err != nil {
		return nil, err
	}

	if err := g.captureChart(page, task, selector.GSCChart, "chart1"); err != nil {
		return nil, err
	}
	if err := g.pivotAndCapture(page, task); err != nil {
		return nil, err
	}

	queries, err := g.topQueries(page)
	if err != nil {
		log.Warn().Err(err).Str("slug", task.Slug).Msg("GSC query extraction failed")
	}

	res := models.ExtractionResult{Section: report.SectionGSC, Items: queries}
	if len(queries) == 0 {
		res.NoData = true
		res.Note = "未能从查询表提取数据"
	}
	return []models.ExtractionResult{res}, nil
}

// captureChart screenshots the resolved element, degrading to a
// full-page capture when no candidate resolves.
func (g *GSC) captureChart(ctx context.Context, task models.Task, t selector.Target, variant string) error {
	sel, err := g.Resolver.Resolve(ctx, t, g.Budget)
	switch {
	case err == nil:
		path := browser.ScreenshotPath(g.Shots, g.Name(), task.Slug, variant)
		if err := browser.CaptureElement(ctx, sel, path); err != nil {
			return fmt.Errorf("gsc: capture %s: %w", variant, err)
		}
		g.events().Log("saved " + path)
		return nil
	case errors.Is(err, selector.ErrNotFound):
		path := browser.ScreenshotPath(g.Shots, g.Name(), task.Slug, variant+"-full")
		if err := browser.CaptureFullPage(ctx, path); err != nil {
			return fmt.Errorf("gsc: full-page capture %s: %w", variant, err)
		}
		log.Warn().Str("target", t.Name).Str("path", path).Msg("Chart element not found, captured full page")
		return nil
	default:
		return err
	}
}

// pivotAndCapture clicks the column-sort button and screenshots the
// re-rendered chart.
func (g *GSC) pivotAndCapture(ctx context.Context, task models.Task) error {
	sel, err := g.Resolver.Resolve(ctx, selector.GSCPivot, g.Budget)
	if err != nil {
		if errors.Is(err, selector.ErrNotFound) {
			return g.captureChart(ctx, task, selector.GSCChartPivoted, "chart2")
		}
		return err
	}

	if err := pace.Human(ctx, 800*time.Millisecond, 1500*time.Millisecond); err != nil {
		return err
	}
	if err := chromedp.Run(ctx, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("gsc: pivot click: %w", err)
	}
	if err := pace.Human(ctx, time.Second, 2*time.Second); err != nil {
		return err
	}
	return g.captureChart(ctx, task, selector.GSCChartPivoted, "chart2")
}

// ensureSignedIn handles the accounts redirect. A saved cookie session
// is tried first, then stored credentials fill the email/password flow;
// either way it then polls until the report URL is back, which covers
// 2FA prompts answered on a phone.
func (g *GSC) ensureSignedIn(ctx context.Context, target string) error {
	loc, err := currentURL(ctx)
	if err != nil {
		return err
	}
	if !strings.Contains(loc, "accounts.google.com") {
		return nil
	}

	if g.restoreSession(ctx, target) {
		return nil
	}

	creds, credErr := auth.LoadCredentials(g.CredSite)
	if credErr == nil {
		if err := g.automatedLogin(ctx, creds); err != nil {
			log.Warn().Err(err).Msg("Automated Google login failed, waiting for manual sign-in")
		}
	} else {
		log.Info().Msg("No stored Google credentials, waiting for manual sign-in")
		g.events().Log("please complete the Google sign-in in the browser window")
	}

	deadline := time.Now().Add(loginPoll)
	for time.Now().Before(deadline) {
		if err := pace.Human(ctx, time.Second, 3*time.Second); err != nil {
			return err
		}
		loc, err := currentURL(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(loc, "search-console") || strings.Contains(loc, "search.google.com") {
			log.Info().Msg("Google sign-in completed")
			g.saveCookies(ctx, loc)
			return nil
		}
	}
	return fmt.Errorf("gsc: sign-in not completed within %s", loginPoll)
}

// restoreSession replays a previously captured cookie session and
// re-navigates. Reports whether that landed back on the report.
func (g *GSC) restoreSession(ctx context.Context, target string) bool {
	s, err := auth.LoadSession(g.CredSite)
	if err != nil {
		return false
	}
	if err := chromedp.Run(ctx, auth.RestoreCookies(s)); err != nil {
		log.Warn().Err(err).Msg("Cookie restore failed")
		return false
	}
	if err := navigate(ctx, target, g.NavTimeout); err != nil {
		return false
	}
	loc, err := currentURL(ctx)
	if err != nil || strings.Contains(loc, "accounts.google.com") {
		return false
	}
	log.Info().Str("session", s.Name).Msg("Restored saved Google session")
	return true
}

// saveCookies stores the signed-in session so a later run can restore
// it into a fresh profile. Best effort: a keyring failure costs only
// the shortcut, not the run.
func (g *GSC) saveCookies(ctx context.Context, loc string) {
	s, err := auth.CaptureCookies(ctx, g.CredSite, loc)
	if err != nil {
		log.Warn().Err(err).Msg("Cookie capture failed")
		return
	}
	if err := auth.SaveSession(s); err != nil {
		log.Warn().Err(err).Msg("Cookie save failed")
	}
}

func (g *GSC) automatedLogin(ctx context.Context, creds auth.Credentials) error {
	steps := []struct {
		field selector.Target
		text  string
		next  selector.Target
	}{
		{selector.LoginEmail, creds.Username, selector.LoginEmailNext},
		{selector.LoginPassword, creds.Password, selector.LoginPasswordNext},
	}
	for _, step := range steps {
		sel, err := g.Resolver.Resolve(ctx, step.field, g.Budget)
		if err != nil {
			return err
		}
		if err := typeSlowly(ctx, sel, step.text); err != nil {
			return err
		}
		next, err := g.Resolver.Resolve(ctx, step.next, g.Budget)
		if err != nil {
			return err
		}
		if err := chromedp.Run(ctx, chromedp.Click(next, chromedp.ByQuery)); err != nil {
			return err
		}
		if err := pace.Human(ctx, time.Second, 3*time.Second); err != nil {
			return err
		}
	}
	return nil
}

// topQueries extracts up to ten query strings from the performance
// table, falling back to an in-page script when the structural parse
// comes up empty.
func (g *GSC) topQueries(ctx context.Context) ([]string, error) {
	sel, err := g.Resolver.Resolve(ctx, selector.GSCTable, g.Budget)
	if err != nil {
		return nil, err
	}
	html, err := outerHTML(ctx, sel)
	if err != nil {
		return nil, err
	}
	queries := ParseGSCQueries(html)
	if len(queries) > 0 {
		return queries, nil
	}

	// DOM parse found nothing; ask the page directly.
	err = chromedp.Run(ctx, chromedp.Evaluate(`(() => {
		const rows = document.querySelectorAll("table tbody tr");
		const queries = [];
		for (let i = 0; i < Math.min(10, rows.length); i++) {
			const cell = rows[i].querySelector("td:first-child");
			if (cell) queries.push(cell.textContent.trim());
		}
		return queries;
	})()`, &queries))
	if err != nil {
		return nil, err
	}
	return queries, nil
}

// ParseGSCQueries pulls the first ten query strings out of a
// performance-table tbody fragment. It prefers the labelled query cell
// and falls back to the first cell of each row.
func ParseGSCQueries(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var queries []string
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cell := row.Find("td[data-label='QUERIES'] span span").First()
		if cell.Length() == 0 {
			cell = row.Find("td").First()
		}
		if text := strings.TrimSpace(cell.Text()); text != "" {
			queries = append(queries, text)
		}
		return len(queries) < 10
	})
	return queries
}
