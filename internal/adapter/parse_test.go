package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGSCQueries(t *testing.T) {
	html := `<tbody>
		<tr><td class="XgRaPc" data-label="QUERIES"><span><span>spotify premium apk</span></span></td><td>120</td></tr>
		<tr><td class="XgRaPc" data-label="QUERIES"><span><span>spotify mod</span></span></td><td>80</td></tr>
	</tbody>`

	got := ParseGSCQueries(html)
	assert.Equal(t, []string{"spotify premium apk", "spotify mod"}, got)
}

func TestParseGSCQueriesFirstCellFallback(t *testing.T) {
	html := `<tbody>
		<tr><td>plain first cell</td><td>120</td></tr>
	</tbody>`

	got := ParseGSCQueries(html)
	assert.Equal(t, []string{"plain first cell"}, got)
}

func TestParseGSCQueriesCapsAtTen(t *testing.T) {
	var html string
	for i := 0; i < 15; i++ {
		html += `<tr><td>q</td></tr>`
	}
	got := ParseGSCQueries("<tbody>" + html + "</tbody>")
	assert.Len(t, got, 10)
}

func TestParseSuggestions(t *testing.T) {
	html := `<ul role="listbox">
		<li role="option">spotify premium apk download</li>
		<li role="option">spotify premium apk 2024</li>
		<li role="option">spotify premium apk download</li>
	</ul>`

	got := ParseSuggestions(html)
	assert.Equal(t, []string{"spotify premium apk download", "spotify premium apk 2024"}, got,
		"duplicates collapse, first-seen order kept")
}

func TestParseRelatedQuestionsDedupAndFilter(t *testing.T) {
	html := `<div>
		<div jsname="N760b"><span>Is Spotify Premium APK safe?</span></div>
		<div jsname="N760b"><span>Is Spotify Premium APK safe?</span></div>
		<div jsname="N760b"><span>not a question</span></div>
		<div jsname="N760b"><span>APK 能在 iPhone 上用吗？</span></div>
	</div>`

	got := ParseRelatedQuestions(html)
	assert.Equal(t, []string{"Is Spotify Premium APK safe?", "APK 能在 iPhone 上用吗？"}, got)
}

func TestParseRelatedSearchesExcludesNavChips(t *testing.T) {
	html := `<div id="botstuff">
		<a href="/search?q=1"><div>spotify premium free</div></a>
		<a href="/search?q=2"><div>Images</div></a>
		<a href="/search?q=3"><div>spotify crack</div></a>
		<a href="/search?q=4"><div>全部</div></a>
	</div>`

	got := ParseRelatedSearches(html)
	assert.Equal(t, []string{"spotify premium free", "spotify crack"}, got)
}

func TestParseMetricsStats(t *testing.T) {
	text := "Keyword Magic Tool\nAll keywords: 2,847\nTotal Volume: 368.2K\nAverage KD: 42%\n"
	stats := ParseMetricsStats(text)

	assert.Equal(t, "2,847", stats.AllKeywords)
	assert.Equal(t, "368.2K", stats.TotalVolume)
	assert.Equal(t, "42%", stats.AverageKD)
}

func TestParseMetricsStatsLooseShapes(t *testing.T) {
	stats := ParseMetricsStats("2847 keywords shown, Volume: 12K, KD: 38%")
	assert.Equal(t, "2847", stats.AllKeywords)
	assert.Equal(t, "12K", stats.TotalVolume)
	assert.Equal(t, "38%", stats.AverageKD)
}

func TestParseMetricsStatsEmpty(t *testing.T) {
	stats := ParseMetricsStats("nothing useful here")
	assert.Empty(t, stats.AllKeywords)
	assert.Empty(t, stats.TotalVolume)
	assert.Empty(t, stats.AverageKD)
}

func TestParseSidebarGroups(t *testing.T) {
	html := `<div>
		<div class="sm-group-content">
			<span class="sm-group-content__text">All keywords</span>
			<span class="sm-group-content__value">2,847</span>
		</div>
		<div class="sm-group-content">
			<span class="sm-group-content__text">PPC Keyword Tool</span>
			<span class="sm-group-content__value">99</span>
		</div>
		<div class="sm-group-content">
			<span class="sm-group-content__text">download</span>
			<span class="sm-group-content__value">1,204</span>
		</div>
		<div class="sm-group-content">
			<span class="sm-group-content__text">free</span>
			<span class="sm-group-content__value">855</span>
		</div>
	</div>`

	groups := ParseSidebarGroups(html)
	require.Len(t, groups, 2)
	assert.Equal(t, "download", groups[0].Name)
	assert.Equal(t, "1,204", groups[0].Volume)
	assert.Equal(t, "free", groups[1].Name)
}

func TestParseKeywordRowsStructural(t *testing.T) {
	html := `<table>
		<tr class="sm-table-layout__header-row"><th>Keyword</th><th>Intent</th><th>Volume</th><th>KD %</th></tr>
		<tr><td><a>spotify premium apk</a></td><td>I</td><td>368000</td><td>42</td></tr>
		<tr><td><a>spotify premium apk download</a></td><td>I</td><td>90500</td><td>38</td></tr>
	</table>`

	rows := ParseKeywordRows(html)
	require.Len(t, rows, 2)
	assert.Equal(t, "spotify premium apk", rows[0].Keyword)
	assert.Equal(t, "368000", rows[0].Volume, "volume column located via header text")
	assert.Equal(t, "42", rows[0].Difficulty)
}

func TestParseKeywordRowsFirstRowAlwaysPasses(t *testing.T) {
	// Two-character keyword would fail the plausibility filter, but the
	// first data row is the query itself and must survive.
	html := `<table>
		<tr><td><a>vk</a></td><td>100</td><td>10</td></tr>
		<tr><td><a>ok</a></td><td>50</td><td>5</td></tr>
	</table>`

	rows := ParseKeywordRows(html)
	require.NotEmpty(t, rows)
	assert.Equal(t, "vk", rows[0].Keyword)
	assert.Len(t, rows, 1, "later rows still go through the filter")
}

func TestParseKeywordRowsLinkFallback(t *testing.T) {
	html := `<div class="sm-table-layout">
		<a>spotify premium apk</a>
		<a>Help Center</a>
		<a>spotify mod apk latest</a>
	</div>`

	rows := ParseKeywordRows(html)
	require.Len(t, rows, 2)
	assert.Equal(t, "spotify premium apk", rows[0].Keyword)
	assert.Equal(t, "spotify mod apk latest", rows[1].Keyword)
}

func TestParseKeywordRowsCap(t *testing.T) {
	html := "<table>"
	for i := 0; i < 30; i++ {
		html += `<tr><td><a>keyword phrase number</a></td><td>10</td><td>1</td></tr>`
	}
	html += "</table>"

	// Rows are identical, which is fine for the structural tier (it has
	// no dedup): the cap is what we check.
	rows := ParseKeywordRows(html)
	assert.Len(t, rows, maxKeywordRows)
}

func TestPlausibleKeyword(t *testing.T) {
	valid := []string{"spotify premium apk", "download music free", "反编译 工具"}
	for _, k := range valid {
		if !plausibleKeyword(k) {
			t.Errorf("%q should pass", k)
		}
	}

	invalid := []string{
		"ab",                  // too short
		"Help Center",         // UI vocabulary
		"https://example.com", // URL
		"path/to/thing",       // path
		"<span>x</span>",      // markup
		"a!!b@@c##d",          // symbol soup
	}
	for _, k := range invalid {
		if plausibleKeyword(k) {
			t.Errorf("%q should be rejected", k)
		}
	}
}

func TestMarkdownExcerpt(t *testing.T) {
	html := `<div><script>evil()</script><h2>Users</h2><p>1.2M sessions</p><a href="/x" onclick="x()">link</a></div>`

	got, err := MarkdownExcerpt(html)
	require.NoError(t, err)
	assert.Contains(t, got, "Users")
	assert.Contains(t, got, "1.2M sessions")
	assert.NotContains(t, got, "evil")
	assert.NotContains(t, got, "onclick")
}

func TestMarkdownExcerptBounded(t *testing.T) {
	html := "<p>"
	for i := 0; i < 2000; i++ {
		html += "lots of words here "
	}
	html += "</p>"

	got, err := MarkdownExcerpt(html)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), excerptLimit)
}

func TestNoDataRecordIsExplicitZero(t *testing.T) {
	res := noDataResult()

	assert.True(t, res.NoData)
	require.NotNil(t, res.Table)
	assert.Equal(t, "0", res.Table.Stats.AllKeywords)
	assert.Equal(t, "0", res.Table.Stats.TotalVolume)
	assert.Equal(t, "N/A", res.Table.Stats.AverageKD)
	assert.NotEmpty(t, res.Table.Stats.Note)
	assert.Empty(t, res.Table.Groups)
	assert.Empty(t, res.Table.Keywords)
}
