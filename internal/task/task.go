// Package task parses the newline-delimited task list and derives the
// per-task identifiers used throughout a run.
package task

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/keywordlab/harvest/pkg/models"
)

// htmlPage matches page-style URL paths ending in .html/.htm.
var htmlPage = regexp.MustCompile(`/([^/]+)\.html?$`)

// nonSlug matches everything that is not allowed in a slug.
var nonSlug = regexp.MustCompile(`[^a-z0-9\p{Han}]+`)

// Parse turns one raw input line into a Task. keywordMode forces
// keyword interpretation even for inputs that look like URLs.
func Parse(raw string, keywordMode bool) (models.Task, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Task{}, fmt.Errorf("empty task input")
	}

	if !keywordMode && (strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")) {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return models.Task{}, fmt.Errorf("invalid task URL %q: %w", raw, err)
		}
		return models.Task{
			Raw:    raw,
			Mode:   models.ModeURL,
			Slug:   slugFromPath(u.Path),
			Domain: u.Host,
		}, nil
	}

	return models.Task{
		Raw:  raw,
		Mode: models.ModeKeyword,
		Slug: Slugify(raw),
	}, nil
}

// slugFromPath derives the page identifier from a URL path. A trailing
// "{name}.html" segment wins; otherwise the last non-empty path
// segment is used, and a bare domain falls back to "index".
func slugFromPath(p string) string {
	if m := htmlPage.FindStringSubmatch(p); m != nil {
		return Slugify(m[1])
	}
	base := path.Base(strings.TrimSuffix(p, "/"))
	if base == "" || base == "." || base == "/" {
		return "index"
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	return Slugify(base)
}

// Slugify lowercases the input and collapses every run of
// non-alphanumeric characters to a single hyphen.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "unknown-page"
	}
	return s
}

// ParseList parses newline-delimited task input. Blank lines and lines
// starting with '#' are skipped. Invalid lines abort with an error
// naming the line number.
func ParseList(input string, keywordMode bool) ([]models.Task, error) {
	var tasks []models.Task
	sc := bufio.NewScanner(strings.NewReader(input))
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		t, err := Parse(raw, keywordMode)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, sc.Err()
}

// LoadFile reads a task list from disk.
func LoadFile(path string, keywordMode bool) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task list: %w", err)
	}
	return ParseList(string(data), keywordMode)
}
