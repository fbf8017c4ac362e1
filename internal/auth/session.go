// Package auth stores credentials and captured login cookies, in the
// OS keyring when available and in files otherwise, and replays them
// into fresh browser profiles.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name under which everything is
	// stored in the OS keyring.
	KeyringService = "harvest-cli"
	fallbackDir    = ".harvest/sessions"
)

// SessionData is one captured login: the site name it is stored under
// and the cookies that reproduce the authenticated state.
type SessionData struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Cookie mirrors the browser cookie fields needed to restore it.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// fileFallback reports whether keyring access is unavailable (CI,
// containers, headless boxes) and files under ~/.harvest must be used.
var fileFallbackCache *bool

func fileFallback() bool {
	if fileFallbackCache != nil {
		return *fileFallbackCache
	}
	if os.Getenv("CI") != "" || os.Getenv("CODESPACES") != "" {
		t := true
		fileFallbackCache = &t
		return true
	}
	err := keyring.Set(KeyringService, "_probe", "ok")
	broken := err != nil
	if !broken {
		_ = keyring.Delete(KeyringService, "_probe")
	}
	fileFallbackCache = &broken
	return broken
}

func sessionDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, fallbackDir)
	return dir, os.MkdirAll(dir, 0700)
}

// SaveSession persists a captured login under its name.
func SaveSession(s *SessionData) error {
	if s.Name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	if fileFallback() {
		dir, err := sessionDir()
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, s.Name+".json"), data, 0600)
	}
	return keyring.Set(KeyringService, "session:"+s.Name, string(data))
}

// LoadSession retrieves a saved login, rejecting expired ones.
func LoadSession(name string) (*SessionData, error) {
	if name == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}
	var raw string
	if fileFallback() {
		dir, err := sessionDir()
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(dir, name+".json"))
		if err != nil {
			return nil, fmt.Errorf("failed to load session %q: %w", name, err)
		}
		raw = string(data)
	} else {
		var err error
		raw, err = keyring.Get(KeyringService, "session:"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %q: %w", name, err)
		}
	}

	var s SessionData
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to deserialize session %q: %w", name, err)
	}
	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		return nil, fmt.Errorf("session %q expired at %s", name, s.ExpiresAt.Format(time.RFC3339))
	}
	return &s, nil
}

// DeleteSession removes a saved login.
func DeleteSession(name string) error {
	if fileFallback() {
		dir, err := sessionDir()
		if err != nil {
			return err
		}
		err = os.Remove(filepath.Join(dir, name+".json"))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return keyring.Delete(KeyringService, "session:"+name)
}

// ListSessions names every saved login. Keyring backends cannot be
// enumerated portably, so only the file fallback lists fully.
func ListSessions() ([]string, error) {
	dir, err := sessionDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		// Credential files share the directory but are not sessions.
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, "cred-") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	return names, nil
}

// RestoreCookies installs a saved session's cookies into the current
// browser context, making a fresh isolated profile authenticated
// without a login flow.
func RestoreCookies(s *SessionData) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range s.Cookies {
			p := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure)
			if c.Expires > 0 {
				exp := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				p = p.WithExpires(&exp)
			}
			if err := p.Do(ctx); err != nil {
				return fmt.Errorf("failed to restore cookie %q: %w", c.Name, err)
			}
		}
		return nil
	})
}

// CaptureCookies reads all cookies from the current browser context
// into a SessionData named name.
func CaptureCookies(ctx context.Context, name, url string) (*SessionData, error) {
	var raw []*network.Cookie
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to extract cookies: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no cookies found, login may have failed")
	}

	s := &SessionData{Name: name, URL: url, CreatedAt: time.Now()}
	maxExpires := 0.0
	for _, c := range raw {
		s.Cookies = append(s.Cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
		if c.Expires > maxExpires {
			maxExpires = c.Expires
		}
	}
	if maxExpires > 0 {
		s.ExpiresAt = time.Unix(int64(maxExpires), 0)
	}
	return s, nil
}
