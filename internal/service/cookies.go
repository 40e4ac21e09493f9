package service

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/set-night/mediagrab/internal/config"
)

// CookieRule maps a URL substring to a credential bundle file name.
type CookieRule struct {
	Token string
	File  string
}

// CookieSelector picks a site-specific cookies file for a URL.
type CookieSelector struct {
	dir   string
	rules []CookieRule
}

func NewCookieSelector(dir string) *CookieSelector {
	rules := make([]CookieRule, len(config.CookieFiles))
	for i, r := range config.CookieFiles {
		rules[i] = CookieRule{Token: r.Token, File: r.File}
	}
	return NewCookieSelectorWithRules(dir, rules)
}

func NewCookieSelectorWithRules(dir string, rules []CookieRule) *CookieSelector {
	return &CookieSelector{dir: dir, rules: rules}
}

// Select returns the cookies file for url, or "" when no rule matches or the
// matching file is absent. A missing file never fails the request.
func (c *CookieSelector) Select(url string) string {
	for _, rule := range c.rules {
		if !strings.Contains(url, rule.Token) {
			continue
		}
		path := filepath.Join(c.dir, rule.File)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return ""
		}
		return path
	}
	return ""
}
