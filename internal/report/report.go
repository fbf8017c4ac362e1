// Package report owns the per-task Markdown reports. Each task slug
// maps to one file whose named sections are replaced independently, so
// re-running a single adapter never disturbs the rest of the document.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keywordlab/harvest/pkg/models"
	"github.com/rs/zerolog/log"
)

// Section headings in their fixed skeleton order.
const (
	SectionSuggestions = "Google 搜索下拉框"
	SectionRelated     = "相关搜索"
	SectionGSC         = "GSC热门查询"
	SectionQuestions   = "相关问题"
	SectionAnalytics   = "流量概览"
	SectionMetrics     = "SEMrush"
)

var skeletonSections = []string{
	SectionSuggestions,
	SectionRelated,
	SectionGSC,
	SectionQuestions,
	SectionAnalytics,
	SectionMetrics,
}

// Store reads and writes report files under a root directory.
type Store struct {
	dir string
}

// NewStore creates the report directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the report file path for a task slug.
func (s *Store) Path(slug string) string {
	return filepath.Join(s.dir, slug+".md")
}

// Upsert renders one extraction result and writes it into its section
// of the task's report, creating the report from the skeleton first if
// it does not exist.
func (s *Store) Upsert(slug string, res models.ExtractionResult) error {
	body := renderBody(res)
	if body == "" {
		// Nothing ran means nothing to write; the section keeps
		// whatever it held before.
		return nil
	}
	return s.UpsertSection(slug, res.Section, body)
}

// UpsertSection replaces the body of the named level-3 section in the
// report for slug, leaving every other byte of the file untouched. A
// missing section heading is appended at the end of the file.
func (s *Store) UpsertSection(slug, section, body string) error {
	path := s.Path(slug)

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		content = []byte(Skeleton(slug))
	} else if err != nil {
		return fmt.Errorf("failed to read report %s: %w", path, err)
	}

	updated := upsert(string(content), section, body)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}

	log.Debug().Str("report", path).Str("section", section).Msg("Section upserted")
	return nil
}

// Skeleton returns the initial report document for a task slug.
func Skeleton(slug string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n## 关键词来源\n", slug)
	for _, sec := range skeletonSections {
		fmt.Fprintf(&b, "\n### %s\n", sec)
	}
	return b.String()
}

// upsert replaces the body span of the "### {section}" heading inside
// content with body. The span runs from the end of the heading line to
// the next heading of level three or higher (fewer '#'), or to EOF.
// If the heading is absent it is appended, so an incomplete template
// never fails a write.
func upsert(content, section, body string) string {
	heading := "### " + section

	start := findHeading(content, heading)
	if start == -1 {
		var b strings.Builder
		b.WriteString(strings.TrimRight(content, "\n"))
		fmt.Fprintf(&b, "\n\n%s\n\n%s\n", heading, body)
		return b.String()
	}

	// End of the heading line.
	lineEnd := strings.IndexByte(content[start:], '\n')
	if lineEnd == -1 {
		lineEnd = len(content) - start
	}
	bodyStart := start + lineEnd

	bodyEnd := nextHeading(content, bodyStart, 3)

	var b strings.Builder
	b.WriteString(content[:start])
	b.WriteString(heading)
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	if bodyEnd < len(content) {
		b.WriteString("\n")
		b.WriteString(content[bodyEnd:])
	}
	return b.String()
}

// findHeading locates a heading line by exact text match, anchored to
// line starts so a mention of the heading inside prose never matches.
func findHeading(content, heading string) int {
	offset := 0
	for {
		i := strings.Index(content[offset:], heading)
		if i == -1 {
			return -1
		}
		i += offset
		lineStart := i == 0 || content[i-1] == '\n'
		lineEnd := i+len(heading) == len(content) || content[i+len(heading)] == '\n'
		if lineStart && lineEnd {
			return i
		}
		offset = i + len(heading)
	}
}

// nextHeading returns the offset of the first heading at or after pos
// whose level is maxLevel or higher (fewer or equal '#'), or
// len(content) if none remains.
func nextHeading(content string, pos, maxLevel int) int {
	for pos < len(content) {
		lineEnd := strings.IndexByte(content[pos:], '\n')
		var next int
		if lineEnd == -1 {
			next = len(content)
		} else {
			next = pos + lineEnd + 1
		}
		line := strings.TrimRight(content[pos:next], "\n")
		if lvl := headingLevel(line); lvl > 0 && lvl <= maxLevel {
			return pos
		}
		pos = next
	}
	return len(content)
}

func headingLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}
