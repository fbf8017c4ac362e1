package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/keywordlab/harvest/internal/auth"
	"github.com/keywordlab/harvest/internal/browser"
	"github.com/keywordlab/harvest/internal/classify"
	"github.com/keywordlab/harvest/internal/pace"
	"github.com/keywordlab/harvest/internal/report"
	"github.com/keywordlab/harvest/internal/selector"
	"github.com/keywordlab/harvest/pkg/models"
)

const maxKeywordRows = 20

// uiVocabulary is navigation and chrome text that leaks into loose row
// selectors. A keyword candidate matching any entry is discarded.
var uiVocabulary = []string{
	"Features", "Pricing", "Help Center", "What's New", "Webinars",
	"Insights", "Hire", "Academy", "Top Websites", "Content Marketing",
	"Local Marketing", "About Us", "Login", "Sign Up", "Contact",
	"Support", "Documentation", "Blog", "API", "Tools",
	"PPC Keyword Tool", "Domain", "Projects", "Analytics",
}

var (
	allKeywordsRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)All keywords[:\s]*(\d[\d,.]*[KMB]?)`),
		regexp.MustCompile(`(?i)(\d[\d,.]*[KMB]?)\s*keywords`),
	}
	totalVolumeRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total Volume[:\s]*(\d[\d,.]*[KMB]?)`),
		regexp.MustCompile(`(?i)Volume[:\s]*(\d[\d,.]*[KMB]?)`),
	}
	averageKDRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Average KD[:\s]*(\d+%)`),
		regexp.MustCompile(`(?i)Avg[\s.]*KD[:\s]*(\d+%)`),
		regexp.MustCompile(`(?i)KD[:\s]*(\d+%)`),
	}
)

// Metrics drives the third-party keyword tool: logs in with stored
// credentials, runs the keyword query, classifies failure pages, and
// extracts the stats header, sidebar groups and keyword table.
type Metrics struct {
	Deps

	LoginURL   string
	ToolURL    string
	Database   string
	CredSite   string
	NavTimeout time.Duration
	Budget     time.Duration
	LoadWait   time.Duration
}

func (m *Metrics) Name() string { return "metrics" }

func (m *Metrics) queryURL(task models.Task) string {
	return m.ToolURL + "?q=" + url.QueryEscape(task.PlusQuery()) +
		"&db=" + m.Database + "&gsort=volume_desc"
}

func (m *Metrics) Run(ctx context.Context, sess *browser.Session, task models.Task) ([]models.ExtractionResult, error) {
	page, cancel, err := sess.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := m.login(page); err != nil {
		return nil, err
	}

	target := m.queryURL(task)
	kind, err := m.Retry.Do(page, "metrics query", func(ctx context.Context, attempt int) (classify.Kind, error) {
		if err := m.Pacer.Wait(ctx, target); err != nil {
			return classify.Unknown, err
		}
		if err := navigate(ctx, target, m.NavTimeout); err != nil {
			return classify.Transient, err
		}
		if err := pace.Human(ctx, m.LoadWait/2, m.LoadWait); err != nil {
			return classify.Unknown, err
		}

		if _, err := m.Resolver.Resolve(ctx, selector.MetricsRows, m.Budget); err != nil {
			kind, cErr := m.classifyPage(ctx)
			if cErr != nil {
				return classify.Unknown, cErr
			}
			if kind == classify.None {
				kind = classify.Unknown
			}
			m.errorShot(ctx, task, attempt)
			if kind == classify.SessionExpired {
				// Re-login before the fast-path retry navigates again.
				if lErr := m.login(ctx); lErr != nil {
					return kind, lErr
				}
			}
			return kind, fmt.Errorf("result rows not found")
		}

		// Rows resolved: the report rendered. Classifying here would
		// run error markers over user keywords and volume figures.
		return classify.None, nil
	})
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	if kind == classify.NoData {
		return []models.ExtractionResult{noDataResult()}, nil
	}

	// The group sidebar renders after the table; wait for it so the
	// capture below includes it. Its absence only loses the groups.
	if _, err := m.Resolver.Resolve(page, selector.MetricsSidebar, m.Budget/4); err != nil && !errors.Is(err, selector.ErrNotFound) {
		return nil, err
	}

	html, err := outerHTML(page, "body")
	if err != nil {
		return nil, fmt.Errorf("metrics: read page: %w", err)
	}
	text, err := bodyText(page)
	if err != nil {
		return nil, fmt.Errorf("metrics: read page text: %w", err)
	}

	table := &models.MetricsTable{
		Stats:    ParseMetricsStats(text),
		Groups:   ParseSidebarGroups(html),
		Keywords: ParseKeywordRows(html),
	}
	res := models.ExtractionResult{Section: report.SectionMetrics, Table: table}
	if len(table.Groups) == 0 && len(table.Keywords) == 0 {
		res.Table = nil
		res.NoData = true
		res.Note = "结果页已加载但未能解析出关键词数据"
	}
	return []models.ExtractionResult{res}, nil
}

// noDataResult is the explicit zero record written when the keyword
// library has nothing for the query: zero counts, N/A difficulty, a
// note, and the blank table row.
func noDataResult() models.ExtractionResult {
	return models.ExtractionResult{
		Section: report.SectionMetrics,
		NoData:  true,
		Table: &models.MetricsTable{Stats: models.MetricsStats{
			AllKeywords: "0",
			TotalVolume: "0",
			AverageKD:   "N/A",
			Note:        "该查询在关键词库中无数据",
		}},
	}
}

func (m *Metrics) classifyPage(ctx context.Context) (classify.Kind, error) {
	text, err := bodyText(ctx)
	if err != nil {
		return classify.Unknown, err
	}
	loc, err := currentURL(ctx)
	if err != nil {
		return classify.Unknown, err
	}
	return classify.Classify(text, loc), nil
}

func (m *Metrics) errorShot(ctx context.Context, task models.Task, attempt int) {
	path := browser.ScreenshotPath(m.Shots, m.Name(), task.Slug, fmt.Sprintf("error%d", attempt))
	if err := browser.CaptureFullPage(ctx, path); err != nil {
		log.Debug().Err(err).Msg("Error screenshot failed")
		return
	}
	log.Info().Str("path", path).Msg("Saved error screenshot")
}

// login walks the tool's sign-in state machine. An already-live session
// is detected by probing the dashboard first.
func (m *Metrics) login(ctx context.Context) error {
	dashboard := strings.Replace(m.LoginURL, "login", "dashboard", 1)
	if err := navigate(ctx, dashboard, m.NavTimeout); err == nil {
		if err := pace.Human(ctx, time.Second, 2*time.Second); err != nil {
			return err
		}
		loc, err := currentURL(ctx)
		if err != nil {
			return err
		}
		if !strings.Contains(loc, "login") {
			log.Debug().Msg("Keyword tool session still live")
			return nil
		}
	}

	creds, err := auth.LoadCredentials(m.CredSite)
	if err != nil {
		return fmt.Errorf("metrics: no stored credentials for %q: %w", m.CredSite, err)
	}

	if err := navigate(ctx, m.LoginURL, m.NavTimeout); err != nil {
		return fmt.Errorf("metrics: open login page: %w", err)
	}
	if err := pace.Human(ctx, time.Second, 2*time.Second); err != nil {
		return err
	}

	err = chromedp.Run(ctx,
		chromedp.WaitVisible("input[type='text']", chromedp.ByQuery),
		chromedp.SendKeys("input[type='text']", creds.Username, chromedp.ByQuery),
		chromedp.SendKeys("input[type='password']", creds.Password, chromedp.ByQuery),
		chromedp.Click("button[type='submit']", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("metrics: submit login form: %w", err)
	}
	if err := pace.Human(ctx, 2*time.Second, 4*time.Second); err != nil {
		return err
	}

	// Some accounts get an extra confirmation screen after the form.
	if sel, err := m.Resolver.Resolve(ctx, selector.MetricsAccountPicker, m.Budget/4); err == nil {
		if err := chromedp.Run(ctx, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
			return fmt.Errorf("metrics: account picker: %w", err)
		}
		if err := pace.Human(ctx, time.Second, 2*time.Second); err != nil {
			return err
		}
	}

	loc, err := currentURL(ctx)
	if err != nil {
		return err
	}
	if strings.Contains(loc, "login") {
		return fmt.Errorf("metrics: login did not reach the dashboard")
	}
	log.Info().Msg("Keyword tool login completed")
	return nil
}

// ParseMetricsStats pulls the summary figures out of the page text.
func ParseMetricsStats(text string) models.MetricsStats {
	first := func(patterns []*regexp.Regexp) string {
		for _, re := range patterns {
			if m := re.FindStringSubmatch(text); m != nil {
				return m[1]
			}
		}
		return ""
	}
	return models.MetricsStats{
		AllKeywords: first(allKeywordsRe),
		TotalVolume: first(totalVolumeRe),
		AverageKD:   first(averageKDRe),
	}
}

// ParseSidebarGroups extracts up to 20 related keyword groups from the
// sidebar, skipping the aggregate row and the PPC tool promo.
func ParseSidebarGroups(html string) []models.KeywordGroup {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var groups []models.KeywordGroup
	doc.Find(".sm-group-content").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := strings.TrimSpace(s.Find(".sm-group-content__text").Text())
		volume := strings.TrimSpace(s.Find(".sm-group-content__value").Text())
		if name == "" || volume == "" {
			return true
		}
		if name == "All keywords" || strings.Contains(name, "PPC") {
			return true
		}
		groups = append(groups, models.KeywordGroup{Name: name, Volume: volume})
		return len(groups) < maxKeywordRows
	})
	return groups
}

// ParseKeywordRows extracts up to 20 keyword rows from the results
// table. Three strategies run in order: structural rows with
// header-column detection, attribute-tagged cells, then a link-text
// sweep. The first strategy that yields rows wins.
func ParseKeywordRows(html string) []models.KeywordMetric {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	for _, extract := range []func(*goquery.Document) []models.KeywordMetric{
		extractStructuralRows,
		extractTaggedRows,
		extractLinkRows,
	} {
		if rows := extract(doc); len(rows) > 0 {
			return rows
		}
	}
	return nil
}

func extractStructuralRows(doc *goquery.Document) []models.KeywordMetric {
	rows := doc.Find(".sm-table-layout__row, [role='row'], tr")

	isHeader := func(s *goquery.Selection) bool {
		if role, _ := s.Attr("role"); role == "rowheader" {
			return true
		}
		if idx, _ := s.Attr("aria-rowindex"); idx == "1" {
			return true
		}
		return s.Find("th").Length() > 0 || s.HasClass("sm-table-layout__header-row")
	}

	// Header-column detection: find which cells hold volume and KD.
	volumeCol, kdCol := 1, 2
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !isHeader(row) {
			return true
		}
		row.Find("th, td, [role='columnheader']").Each(func(i int, cell *goquery.Selection) {
			text := strings.ToLower(strings.TrimSpace(cell.Text()))
			switch {
			case strings.Contains(text, "volume") || strings.Contains(text, "vol") ||
				strings.Contains(text, "搜索量") || strings.Contains(text, "流量"):
				volumeCol = i
			case strings.Contains(text, "kd") || strings.Contains(text, "difficulty") ||
				strings.Contains(text, "难度") || strings.Contains(text, "竞争"):
				kdCol = i
			}
		})
		return false
	})

	var out []models.KeywordMetric
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if isHeader(row) {
			return true
		}
		cells := row.Find("td, [role='cell'], .sm-table-layout__cell")
		if cells.Length() == 0 {
			return true
		}

		keyword := strings.TrimSpace(cells.First().Find("a").First().Text())
		if keyword == "" {
			keyword = strings.TrimSpace(cells.First().Text())
		}
		// The first data row is the query itself and always passes.
		if len(out) > 0 && !plausibleKeyword(keyword) {
			return true
		}
		if keyword == "" {
			return true
		}

		metric := models.KeywordMetric{Keyword: keyword}
		if volumeCol < cells.Length() {
			metric.Volume = strings.TrimSpace(cells.Eq(volumeCol).Text())
		}
		if kdCol < cells.Length() {
			metric.Difficulty = strings.TrimSpace(cells.Eq(kdCol).Text())
		}
		out = append(out, metric)
		return len(out) < maxKeywordRows
	})
	return out
}

func extractTaggedRows(doc *goquery.Document) []models.KeywordMetric {
	var out []models.KeywordMetric
	doc.Find("[data-type='keyword'], [data-type='keyword-row']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		keyword := strings.TrimSpace(s.Text())
		if !plausibleKeyword(keyword) {
			return true
		}
		out = append(out, models.KeywordMetric{Keyword: keyword})
		return len(out) < maxKeywordRows
	})
	return out
}

func extractLinkRows(doc *goquery.Document) []models.KeywordMetric {
	seen := make(map[string]struct{})
	var out []models.KeywordMetric
	doc.Find(".sm-table-layout a, table a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		keyword := strings.TrimSpace(s.Text())
		if !plausibleKeyword(keyword) {
			return true
		}
		if _, dup := seen[keyword]; dup {
			return true
		}
		seen[keyword] = struct{}{}
		out = append(out, models.KeywordMetric{Keyword: keyword})
		return len(out) < maxKeywordRows
	})
	return out
}

// plausibleKeyword filters row-selector noise: UI vocabulary, URLs,
// markup fragments and symbol-heavy strings are not keywords.
func plausibleKeyword(text string) bool {
	if len(text) < 3 || len(text) > 80 {
		return false
	}
	if strings.ContainsAny(text, "<>") {
		return false
	}
	if strings.Contains(text, "/") || strings.Contains(text, "http") {
		return false
	}
	lower := strings.ToLower(text)
	for _, term := range uiVocabulary {
		lt := strings.ToLower(term)
		if lower == lt || strings.HasPrefix(lower, lt+" ") {
			return false
		}
	}
	symbols := 0
	for _, r := range text {
		if strings.ContainsRune("!@#$%^&*()_+=[]{};':\"\\|,.<>?-", r) {
			symbols++
		}
	}
	return symbols <= 2
}
