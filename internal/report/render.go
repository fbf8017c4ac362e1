package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/keywordlab/harvest/pkg/models"
)

// NoDataMarker is written when an adapter ran and found nothing, so a
// deliberately empty section is distinguishable from one never run.
const NoDataMarker = "（无数据）"

var metricsHeaders = []string{"main words", "main word volume", "Key words", "Volume", "Keyword Difficulty"}

// renderBody turns an extraction result into the Markdown body of its
// section. An empty string means there is nothing to write at all.
func renderBody(res models.ExtractionResult) string {
	switch {
	case res.Table != nil:
		return renderMetrics(res.Table)
	case res.Raw != "":
		return strings.TrimRight(res.Raw, "\n")
	case len(res.Items) > 0:
		return NumberedList(res.Items)
	case res.NoData:
		if res.Note != "" {
			return NoDataMarker + " " + res.Note
		}
		return NoDataMarker
	}
	return ""
}

// NumberedList renders items as a 1-based numbered list, one per line.
func NumberedList(items []string) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, it)
	}
	return b.String()
}

// renderMetrics produces the stats bullet block followed by the
// five-column keyword table.
func renderMetrics(t *models.MetricsTable) string {
	var b strings.Builder

	stats := t.Stats
	if stats.AllKeywords != "" {
		fmt.Fprintf(&b, "- ALL Keywords: **%s**\n", stats.AllKeywords)
	}
	if stats.TotalVolume != "" {
		fmt.Fprintf(&b, "- Total Volume: **%s**\n", stats.TotalVolume)
	}
	if stats.AverageKD != "" {
		fmt.Fprintf(&b, "- Average KD: **%s**\n", stats.AverageKD)
	}
	if stats.Note != "" {
		fmt.Fprintf(&b, "- 说明: *%s*\n", stats.Note)
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}

	rows := metricsRows(t)
	b.WriteString(Table(metricsHeaders, rows))
	return strings.TrimRight(b.String(), "\n")
}

// metricsRows zips sidebar groups and keyword rows side by side; the
// shorter sequence is padded with empty cells.
func metricsRows(t *models.MetricsTable) [][]string {
	n := len(t.Groups)
	if len(t.Keywords) > n {
		n = len(t.Keywords)
	}
	if n == 0 {
		// One blank row keeps the table well-formed when a no-data
		// record is written.
		return [][]string{{"", "", "", "", ""}}
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, 5)
		if i < len(t.Groups) {
			row[0] = t.Groups[i].Name
			row[1] = t.Groups[i].Volume
		}
		if i < len(t.Keywords) {
			row[2] = t.Keywords[i].Keyword
			row[3] = t.Keywords[i].Volume
			row[4] = t.Keywords[i].Difficulty
		}
		rows[i] = row
	}
	return rows
}

// Table renders a Markdown table whose column widths are computed from
// the longest cell in each column, so the raw text is readable without
// a renderer.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		// An all-empty column still needs one dash in the separator.
		if widths[i] < 1 {
			widths[i] = 1
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteByte('|')
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&b, " %s |", pad(cell, widths[i]))
		}
		b.WriteByte('\n')
	}

	writeRow(headers)
	b.WriteByte('|')
	for i := range headers {
		dashes := widths[i] - 1
		if dashes < 1 {
			dashes = 1
		}
		fmt.Fprintf(&b, " %s |", ":"+strings.Repeat("-", dashes))
	}
	b.WriteByte('\n')
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

func pad(s string, width int) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
