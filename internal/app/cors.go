package app

import (
	"net/url"
	"strings"
)

// originAllowed reports whether the request origin matches any configured
// pattern. Patterns compare against the origin's host part and may be an
// exact host, a "*.domain" subdomain wildcard, or "host:*" for any port.
func originAllowed(patterns []string, origin string) bool {
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Host
	}
	for _, pattern := range patterns {
		if pattern == host {
			return true
		}
		if after, ok := strings.CutPrefix(pattern, "*."); ok {
			if strings.HasSuffix(host, "."+after) {
				return true
			}
			continue
		}
		if before, ok := strings.CutSuffix(pattern, ":*"); ok && strings.HasPrefix(host, before+":") {
			return true
		}
	}
	return false
}
