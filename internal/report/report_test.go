package report

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keywordlab/harvest/pkg/models"
)

func TestSkeletonHasAllSections(t *testing.T) {
	s := Skeleton("spotify-premium-apk")

	if !strings.HasPrefix(s, "# spotify-premium-apk\n") {
		t.Errorf("skeleton must start with the slug title, got %q", s[:40])
	}
	for _, section := range skeletonSections {
		if !strings.Contains(s, "### "+section) {
			t.Errorf("skeleton missing section %q", section)
		}
	}
}

func TestUpsertFreshReport(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	res := models.ExtractionResult{
		Section: SectionSuggestions,
		Items:   []string{"spotify premium apk download", "spotify premium apk 2024"},
	}
	require.NoError(t, store.Upsert("spotify-premium-apk", res))

	data, err := os.ReadFile(store.Path("spotify-premium-apk"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# spotify-premium-apk")
	assert.Contains(t, content, "1. spotify premium apk download\n2. spotify premium apk 2024")
	// The untouched sections still exist, empty.
	assert.Contains(t, content, "### "+SectionMetrics)
}

func TestUpsertIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	res := models.ExtractionResult{Section: SectionRelated, Items: []string{"a", "b"}}
	require.NoError(t, store.Upsert("page", res))

	first, err := os.ReadFile(store.Path("page"))
	require.NoError(t, err)

	require.NoError(t, store.Upsert("page", res))
	second, err := os.ReadFile(store.Path("page"))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second), "re-running the same upsert must be a byte-level no-op")
}

func TestUpsertReplacesOnlyItsSection(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Upsert("page", models.ExtractionResult{
		Section: SectionSuggestions, Items: []string{"old suggestion"},
	}))
	require.NoError(t, store.Upsert("page", models.ExtractionResult{
		Section: SectionQuestions, Items: []string{"what is it?"},
	}))
	require.NoError(t, store.Upsert("page", models.ExtractionResult{
		Section: SectionSuggestions, Items: []string{"new suggestion"},
	}))

	data, err := os.ReadFile(store.Path("page"))
	require.NoError(t, err)
	content := string(data)

	assert.NotContains(t, content, "old suggestion")
	assert.Contains(t, content, "new suggestion")
	assert.Contains(t, content, "what is it?", "sibling section must survive the second upsert")
}

func TestUpsertAcrossTwoRuns(t *testing.T) {
	dir := t.TempDir()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.Upsert("page", models.ExtractionResult{
		Section: SectionGSC, Items: []string{"query one"},
	}))

	// A later process opens the same directory.
	store2, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store2.Upsert("page", models.ExtractionResult{
		Section: SectionRelated, Items: []string{"related one"},
	}))

	data, err := os.ReadFile(store2.Path("page"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "query one")
	assert.Contains(t, string(data), "related one")
}

func TestUpsertAppendsMissingHeading(t *testing.T) {
	content := "# page\n\n## 关键词来源\n\n### " + SectionSuggestions + "\n"
	got := upsert(content, SectionMetrics, "body text")

	if !strings.HasSuffix(got, "### "+SectionMetrics+"\n\n"+"body text\n") {
		t.Errorf("missing heading must be appended at EOF, got:\n%s", got)
	}
	if !strings.Contains(got, "### "+SectionSuggestions) {
		t.Errorf("existing content must be preserved")
	}
}

func TestUpsertLastSection(t *testing.T) {
	content := "# page\n\n### " + SectionMetrics + "\n\nold\n"
	got := upsert(content, SectionMetrics, "new")

	if strings.Contains(got, "old") {
		t.Errorf("old body must be replaced, got:\n%s", got)
	}
	if !strings.Contains(got, "### "+SectionMetrics+"\n\nnew\n") {
		t.Errorf("new body missing, got:\n%s", got)
	}
}

func TestUpsertNoDataWritesMarker(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Upsert("page", models.ExtractionResult{
		Section: SectionMetrics,
		NoData:  true,
		Note:    "该查询在关键词库中无数据",
	}))

	data, err := os.ReadFile(store.Path("page"))
	require.NoError(t, err)
	assert.Contains(t, string(data), NoDataMarker)
	assert.Contains(t, string(data), "该查询在关键词库中无数据")
}

func TestUpsertEmptyResultLeavesFileAlone(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	// Failure-shaped result: no payload, not flagged NoData.
	require.NoError(t, store.Upsert("page", models.ExtractionResult{Section: SectionGSC}))

	_, err = os.Stat(store.Path("page"))
	assert.True(t, os.IsNotExist(err), "an empty non-NoData result must not create the file")
}
