package auth

import (
	"strings"
	"testing"
	"time"
)

// forceFileStore routes storage to files under a throwaway home dir so
// tests never touch a real keyring.
func forceFileStore(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	yes := true
	old := fileFallbackCache
	fileFallbackCache = &yes
	t.Cleanup(func() { fileFallbackCache = old })
}

func TestSaveLoadDeleteSession(t *testing.T) {
	forceFileStore(t)

	s := &SessionData{
		Name:      "semrush",
		URL:       "https://tool.example.com/#/login",
		CreatedAt: time.Now(),
		Cookies: []Cookie{
			{Name: "sid", Value: "abc", Domain: ".example.com", Path: "/", Secure: true},
		},
	}
	if err := SaveSession(s); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := LoadSession("semrush")
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if got.URL != s.URL || len(got.Cookies) != 1 || got.Cookies[0].Value != "abc" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if err := DeleteSession("semrush"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := LoadSession("semrush"); err == nil {
		t.Error("deleted session must not load")
	}
}

func TestLoadSessionRejectsExpired(t *testing.T) {
	forceFileStore(t)

	s := &SessionData{
		Name:      "stale",
		CreatedAt: time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
		Cookies:   []Cookie{{Name: "sid", Value: "x"}},
	}
	if err := SaveSession(s); err != nil {
		t.Fatal(err)
	}

	_, err := LoadSession("stale")
	if err == nil {
		t.Fatal("expired session must be rejected")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("error should say expired, got: %v", err)
	}
}

func TestSaveSessionRequiresName(t *testing.T) {
	forceFileStore(t)
	if err := SaveSession(&SessionData{}); err == nil {
		t.Error("empty name must fail")
	}
}

func TestListSessions(t *testing.T) {
	forceFileStore(t)

	for _, name := range []string{"alpha", "beta"} {
		if err := SaveSession(&SessionData{Name: name, CreatedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	// Credentials live in the same directory but are not sessions.
	if err := SaveCredentials(Credentials{Site: "semrush", Username: "u", Password: "p"}); err != nil {
		t.Fatal(err)
	}

	names, err := ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 sessions, got %v", names)
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	forceFileStore(t)

	c := Credentials{Site: "semrush", Username: "user", Password: "secret"}
	if err := SaveCredentials(c); err != nil {
		t.Fatal(err)
	}

	got, err := LoadCredentials("semrush")
	if err != nil {
		t.Fatal(err)
	}
	if got != c {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if err := DeleteCredentials("semrush"); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCredentials("semrush"); err == nil {
		t.Error("deleted credentials must not load")
	}
}
