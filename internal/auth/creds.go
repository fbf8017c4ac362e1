package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

// Credentials is a username/password pair for one login-requiring
// site, keyed by a short site name ("google", "semrush").
type Credentials struct {
	Site     string `json:"site"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SaveCredentials stores credentials for a site.
func SaveCredentials(c Credentials) error {
	if c.Site == "" {
		return fmt.Errorf("credential site cannot be empty")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if fileFallback() {
		dir, err := sessionDir()
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, "cred-"+c.Site+".json"), data, 0600)
	}
	return keyring.Set(KeyringService, "cred:"+c.Site, string(data))
}

// LoadCredentials retrieves stored credentials for a site. A missing
// entry is an error; adapters treat it as "manual login required".
func LoadCredentials(site string) (Credentials, error) {
	var raw string
	if fileFallback() {
		dir, err := sessionDir()
		if err != nil {
			return Credentials{}, err
		}
		data, err := os.ReadFile(filepath.Join(dir, "cred-"+site+".json"))
		if err != nil {
			return Credentials{}, fmt.Errorf("no stored credentials for %q: %w", site, err)
		}
		raw = string(data)
	} else {
		var err error
		raw, err = keyring.Get(KeyringService, "cred:"+site)
		if err != nil {
			return Credentials{}, fmt.Errorf("no stored credentials for %q: %w", site, err)
		}
	}
	var c Credentials
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Credentials{}, fmt.Errorf("corrupt credentials for %q: %w", site, err)
	}
	return c, nil
}

// DeleteCredentials removes stored credentials for a site.
func DeleteCredentials(site string) error {
	if fileFallback() {
		dir, err := sessionDir()
		if err != nil {
			return err
		}
		err = os.Remove(filepath.Join(dir, "cred-"+site+".json"))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return keyring.Delete(KeyringService, "cred:"+site)
}
