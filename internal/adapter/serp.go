package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog/log"

	"github.com/keywordlab/harvest/internal/browser"
	"github.com/keywordlab/harvest/internal/pace"
	"github.com/keywordlab/harvest/internal/report"
	"github.com/keywordlab/harvest/internal/selector"
	"github.com/keywordlab/harvest/pkg/models"
)

// navChips are non-content chips that render inside the related-searches
// area and must never end up in a report.
var navChips = map[string]struct{}{
	"All": {}, "Images": {}, "Videos": {}, "News": {}, "Shopping": {},
	"Maps": {}, "Books": {}, "Flights": {}, "Finance": {}, "More": {},
	"Tools": {}, "全部": {}, "图片": {}, "视频": {}, "新闻": {}, "购物": {}, "地图": {},
}

// SERP collects autocomplete suggestions, "people also ask" questions
// and related searches for a task's query.
type SERP struct {
	Deps

	SearchURL  string
	NavTimeout time.Duration
	Budget     time.Duration
	LoadWait   time.Duration
}

func (s *SERP) Name() string { return "serp" }

func (s *SERP) Run(ctx context.Context, sess *browser.Session, task models.Task) ([]models.ExtractionResult, error) {
	page, cancel, err := sess.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := s.Pacer.Wait(ctx, s.SearchURL); err != nil {
		return nil, err
	}
	if err := navigate(page, s.SearchURL, s.NavTimeout); err != nil {
		return nil, fmt.Errorf("serp: navigate: %w", err)
	}
	if err := s.dismissConsent(page); err != nil {
		return nil, err
	}

	box, err := s.Resolver.Resolve(page, selector.SearchBox, s.Budget)
	if err != nil {
		return nil, fmt.Errorf("serp: search box: %w", err)
	}
	if err := chromedp.Run(page, chromedp.Click(box, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	if err := typeSlowly(page, box, task.Query()); err != nil {
		return nil, err
	}

	var results []models.ExtractionResult
	suggestions := s.collectSuggestions(page)
	results = append(results, listResult(report.SectionSuggestions, suggestions, "未出现搜索下拉框"))

	if err := chromedp.Run(page, chromedp.SendKeys(box, kb.Enter, chromedp.ByQuery)); err != nil {
		return results, fmt.Errorf("serp: submit: %w", err)
	}
	if err := pace.Human(page, s.LoadWait/2, s.LoadWait); err != nil {
		return results, err
	}

	questions := s.collectQuestions(page)
	results = append(results, listResult(report.SectionQuestions, questions, "结果页无相关问题区块"))

	if err := scrollToBottom(page); err != nil {
		return results, err
	}
	if err := pace.Human(page, time.Second, 2*time.Second); err != nil {
		return results, err
	}

	related := s.collectRelated(page)
	results = append(results, listResult(report.SectionRelated, related, "结果页无相关搜索区块"))

	return results, nil
}

func listResult(section string, items []string, emptyNote string) models.ExtractionResult {
	res := models.ExtractionResult{Section: section, Items: items}
	if len(items) == 0 {
		res.NoData = true
		res.Note = emptyNote
	}
	return res
}

// dismissConsent clicks the cookie interstitial if one shows up. Not
// seeing one is the common case and not an error.
func (s *SERP) dismissConsent(ctx context.Context) error {
	sel, err := s.Resolver.Resolve(ctx, selector.ConsentButton, s.Budget/4)
	if err != nil {
		if errors.Is(err, selector.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := chromedp.Run(ctx, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("serp: consent click: %w", err)
	}
	return pace.Human(ctx, 500*time.Millisecond, 1500*time.Millisecond)
}

func (s *SERP) collectSuggestions(ctx context.Context) []string {
	sel, err := s.Resolver.Resolve(ctx, selector.SuggestionList, s.Budget/2)
	if err != nil {
		log.Debug().Err(err).Msg("Suggestion list did not appear")
		return nil
	}
	html, err := outerHTML(ctx, sel)
	if err != nil {
		log.Warn().Err(err).Msg("Reading suggestion list failed")
		return nil
	}
	return ParseSuggestions(html)
}

func (s *SERP) collectQuestions(ctx context.Context) []string {
	if _, err := s.Resolver.Resolve(ctx, selector.RelatedQuestions, s.Budget/2); err != nil {
		log.Debug().Err(err).Msg("No related-questions block")
		return nil
	}
	html, err := outerHTML(ctx, "body")
	if err != nil {
		log.Warn().Err(err).Msg("Reading results page failed")
		return nil
	}
	return ParseRelatedQuestions(html)
}

func (s *SERP) collectRelated(ctx context.Context) []string {
	if _, err := s.Resolver.Resolve(ctx, selector.RelatedSearches, s.Budget/2); err != nil {
		log.Debug().Err(err).Msg("No related-searches block")
		return nil
	}
	html, err := outerHTML(ctx, "body")
	if err != nil {
		log.Warn().Err(err).Msg("Reading results page failed")
		return nil
	}
	return ParseRelatedSearches(html)
}

// ParseSuggestions extracts autocomplete entries from a listbox
// fragment, deduplicated in first-seen order.
func ParseSuggestions(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}

	doc.Find("li[role='option']").Each(func(_ int, s *goquery.Selection) {
		add(s.Text())
	})
	if len(out) == 0 {
		doc.Find("li").Each(func(_ int, s *goquery.Selection) {
			add(s.Text())
		})
	}
	return out
}

// ParseRelatedQuestions extracts "people also ask" question texts from
// a results page, deduplicated via a set since the block re-renders
// entries as it expands.
func ParseRelatedQuestions(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, pat := range []string{
		"div[jsname='N760b'] span",
		".related-question-pair span",
		"div[data-initq]",
	} {
		doc.Find(pat).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text == "" || !strings.ContainsAny(text, "?？") {
				return
			}
			if _, dup := seen[text]; dup {
				return
			}
			seen[text] = struct{}{}
			out = append(out, text)
		})
		if len(out) > 0 {
			break
		}
	}
	return out
}

// ParseRelatedSearches extracts the related-searches chips from a
// results page, dropping navigation chips by exact match.
func ParseRelatedSearches(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, pat := range []string{"#botstuff a > div", "#brs a", "a[data-xbu]"} {
		doc.Find(pat).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text == "" {
				return
			}
			if _, nav := navChips[text]; nav {
				return
			}
			if _, dup := seen[text]; dup {
				return
			}
			seen[text] = struct{}{}
			out = append(out, text)
		})
		if len(out) > 0 {
			break
		}
	}
	return out
}
