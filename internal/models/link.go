package models

import (
	"net/url"
	"strings"
)

// NormalizeURL trims raw and prefixes https:// when it carries no http or
// https scheme. An empty input stays empty.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return u
}

// DomainOf returns the host part of rawURL, or rawURL itself when it
// cannot be parsed.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
