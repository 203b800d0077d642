package platform

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// persistedCookie is the YAML shape of one saved session cookie.
type persistedCookie struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// loadCookies restores the session cookies saved by a previous run. A
// missing cookie file is not an error.
func (c *Client) loadCookies() error {
	if c.cookieFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.cookieFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cookie file: %w", err)
	}

	var saved []persistedCookie
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("failed to parse cookie file: %w", err)
	}

	u, err := url.Parse(c.host)
	if err != nil {
		return fmt.Errorf("invalid host %q: %w", c.host, err)
	}

	cookies := make([]*http.Cookie, 0, len(saved))
	for _, pc := range saved {
		cookies = append(cookies, &http.Cookie{Name: pc.Name, Value: pc.Value})
	}
	c.jar.SetCookies(u, cookies)

	c.logger.Debug("cookies loaded", "count", len(cookies))
	return nil
}

// saveCookies persists the current session cookies for the next run.
func (c *Client) saveCookies() error {
	if c.cookieFile == "" {
		return nil
	}

	u, err := url.Parse(c.host)
	if err != nil {
		return fmt.Errorf("invalid host %q: %w", c.host, err)
	}

	var saved []persistedCookie
	for _, cookie := range c.jar.Cookies(u) {
		saved = append(saved, persistedCookie{Name: cookie.Name, Value: cookie.Value})
	}

	data, err := yaml.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.cookieFile), 0700); err != nil {
		return err
	}
	return os.WriteFile(c.cookieFile, data, 0600)
}
