package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	xhtml "golang.org/x/net/html"

	"github.com/keywordlab/harvest/internal/browser"
	"github.com/keywordlab/harvest/internal/pace"
	"github.com/keywordlab/harvest/internal/report"
	"github.com/keywordlab/harvest/internal/selector"
	"github.com/keywordlab/harvest/pkg/models"
)

// excerptLimit caps the Markdown excerpt written into the report so a
// failed element resolve cannot dump a whole SPA shell into it.
const excerptLimit = 4000

// Analytics screenshots the traffic overview report and keeps a
// Markdown excerpt of whatever the page rendered, so the report still
// says something when the screenshot later turns out to be blank.
type Analytics struct {
	Deps

	BaseURL    string
	NavTimeout time.Duration
	Budget     time.Duration
	LoadWait   time.Duration
}

func (a *Analytics) Name() string { return "analytics" }

func (a *Analytics) Run(ctx context.Context, sess *browser.Session, task models.Task) ([]models.ExtractionResult, error) {
	page, cancel, err := sess.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := a.Pacer.Wait(ctx, a.BaseURL); err != nil {
		return nil, err
	}
	if err := navigate(page, a.BaseURL, a.NavTimeout); err != nil {
		return nil, fmt.Errorf("analytics: navigate: %w", err)
	}
	// The report canvas renders long after document load.
	if err := pace.Human(page, a.LoadWait, a.LoadWait*2); err != nil {
		return nil, err
	}

	sel, err := a.Resolver.Resolve(page, selector.AnalyticsReport, a.Budget)
	switch {
	case err == nil:
		path := browser.ScreenshotPath(a.Shots, a.Name(), task.Slug, "overview")
		if err := browser.CaptureElement(page, sel, path); err != nil {
			return nil, fmt.Errorf("analytics: capture: %w", err)
		}
		a.events().Log("saved " + path)
	case errors.Is(err, selector.ErrNotFound):
		sel = "body"
		path := browser.ScreenshotPath(a.Shots, a.Name(), task.Slug, "overview-full")
		if err := browser.CaptureFullPage(page, path); err != nil {
			return nil, fmt.Errorf("analytics: full-page capture: %w", err)
		}
		log.Warn().Str("path", path).Msg("Report element not found, captured full page")
	default:
		return nil, err
	}

	html, err := outerHTML(page, sel)
	if err != nil {
		return nil, fmt.Errorf("analytics: read report html: %w", err)
	}
	excerpt, err := MarkdownExcerpt(html)
	if err != nil {
		log.Warn().Err(err).Msg("Report excerpt conversion failed")
	}

	res := models.ExtractionResult{Section: report.SectionAnalytics, Raw: excerpt}
	if excerpt == "" {
		res.NoData = true
		res.Note = "报告区域未渲染出可读内容"
	}
	return []models.ExtractionResult{res}, nil
}

// MarkdownExcerpt sanitizes an HTML fragment and converts it to a
// bounded Markdown excerpt.
func MarkdownExcerpt(htmlContent string) (string, error) {
	cleaned, err := cleanHTML(htmlContent)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	mdStr, err := converter.ConvertString(cleaned)
	if err != nil {
		return "", err
	}

	mdStr = strings.TrimSpace(mdStr)
	if len(mdStr) > excerptLimit {
		mdStr = mdStr[:excerptLimit]
		if i := strings.LastIndexByte(mdStr, '\n'); i > 0 {
			mdStr = mdStr[:i]
		}
	}
	return mdStr, nil
}

// cleanHTML strips scripting and chrome from a fragment and drops all
// attributes except link and image essentials.
func cleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas").Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var kept []xhtml.Attribute
		for _, attr := range node.Attr {
			keep := false
			switch node.Data {
			case "a":
				keep = attr.Key == "href" || attr.Key == "title"
			case "img":
				keep = attr.Key == "src" || attr.Key == "alt" || attr.Key == "title"
			}
			if keep {
				kept = append(kept, attr)
			}
		}
		node.Attr = kept
	})

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
