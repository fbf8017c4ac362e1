package models

import "strings"

// TaskMode selects how a task's raw input is interpreted.
type TaskMode string

const (
	// ModeURL treats the input as a page URL to research.
	ModeURL TaskMode = "url"
	// ModeKeyword treats the input as a free-text search keyword.
	ModeKeyword TaskMode = "keyword"
)

// Task is one unit of work: a page URL or a keyword, plus the
// identifiers derived from it. Tasks are immutable once parsed.
type Task struct {
	Raw    string
	Mode   TaskMode
	Slug   string
	Domain string
}

// Query returns the task rendered as a human search query
// ("spotify-premium-apk" -> "spotify premium apk").
func (t Task) Query() string {
	return strings.ReplaceAll(t.Slug, "-", " ")
}

// PlusQuery returns the task rendered for query-string parameters
// ("spotify-premium-apk" -> "spotify+premium+apk").
func (t Task) PlusQuery() string {
	return strings.ReplaceAll(t.Slug, "-", "+")
}

// KeywordGroup is one sidebar entry from the keyword-metrics tool:
// a related keyword group name and its aggregate volume.
type KeywordGroup struct {
	Name   string
	Volume string
}

// KeywordMetric is one row of the keyword-metrics table.
type KeywordMetric struct {
	Keyword    string
	Volume     string
	Difficulty string
}

// MetricsStats holds the summary figures shown above the keyword table.
type MetricsStats struct {
	AllKeywords string
	TotalVolume string
	AverageKD   string
	Note        string
}

// MetricsTable is the structured payload produced by the
// keyword-metrics adapter.
type MetricsTable struct {
	Stats    MetricsStats
	Groups   []KeywordGroup
	Keywords []KeywordMetric
}

// ExtractionResult is the output of one adapter for one task: a report
// section name plus its content. At most one of Items, Table or Raw
// carries the payload. NoData marks an explicit empty outcome, which
// is distinct from an extraction failure (a failure produces no result
// at all, so the section is left untouched).
type ExtractionResult struct {
	Section string
	Items   []string
	Table   *MetricsTable
	Raw     string
	NoData  bool
	Note    string
}

// Empty reports whether the result carries no payload.
func (r ExtractionResult) Empty() bool {
	return len(r.Items) == 0 && r.Table == nil && r.Raw == ""
}
