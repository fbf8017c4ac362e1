package task

import (
	"strings"
	"testing"

	"github.com/keywordlab/harvest/pkg/models"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw    string
		slug   string
		domain string
	}{
		{"https://www.drmare.com/spotify-music/get-spotify-unblocked.html", "get-spotify-unblocked", "www.drmare.com"},
		{"https://example.com/guides/spotify-premium-apk.htm", "spotify-premium-apk", "example.com"},
		{"https://example.com/blog/some-post/", "some-post", "example.com"},
		{"https://example.com/", "index", "example.com"},
		{"https://example.com", "index", "example.com"},
	}

	for _, tt := range tests {
		got, err := Parse(tt.raw, false)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.raw, err)
		}
		if got.Mode != models.ModeURL {
			t.Errorf("Parse(%q): mode = %v, want ModeURL", tt.raw, got.Mode)
		}
		if got.Slug != tt.slug {
			t.Errorf("Parse(%q): slug = %q, want %q", tt.raw, got.Slug, tt.slug)
		}
		if got.Domain != tt.domain {
			t.Errorf("Parse(%q): domain = %q, want %q", tt.raw, got.Domain, tt.domain)
		}
	}
}

func TestParseKeyword(t *testing.T) {
	got, err := Parse("Spotify Premium APK", false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Mode != models.ModeKeyword {
		t.Errorf("mode = %v, want ModeKeyword", got.Mode)
	}
	if got.Slug != "spotify-premium-apk" {
		t.Errorf("slug = %q", got.Slug)
	}
	if got.Query() != "spotify premium apk" {
		t.Errorf("Query() = %q", got.Query())
	}
	if got.PlusQuery() != "spotify+premium+apk" {
		t.Errorf("PlusQuery() = %q", got.PlusQuery())
	}
}

func TestParseKeywordModeForcesKeyword(t *testing.T) {
	got, err := Parse("https://example.com/page.html", true)
	if err != nil {
		t.Fatal(err)
	}
	if got.Mode != models.ModeKeyword {
		t.Errorf("keyword mode must win over URL shape, got %v", got.Mode)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse("   ", false); err == nil {
		t.Error("expected an error for blank input")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Add Spotify To Video", "add-spotify-to-video"},
		{"spotify  premium!!apk", "spotify-premium-apk"},
		{"下载 spotify 音乐", "下载-spotify-音乐"},
		{"***", "unknown-page"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseListSkipsCommentsAndBlanks(t *testing.T) {
	input := `
# research batch
https://example.com/a.html

spotify premium apk
`
	tasks, err := ParseList(input, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Slug != "a" || tasks[1].Slug != "spotify-premium-apk" {
		t.Errorf("unexpected slugs: %q, %q", tasks[0].Slug, tasks[1].Slug)
	}
}

func TestParseListNamesLineNumber(t *testing.T) {
	input := "https://example.com/ok.html\n   \nhttps://%zz invalid"
	_, err := ParseList(input, false)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error should name line 3, got: %v", err)
	}
}
