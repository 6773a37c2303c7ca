package session

import (
	"net/http"
	"strings"
)

// OriginChecker matches the Origin header of an upgrade request against a
// configured allow-list. Entries may be exact origins, prefixes ending in *,
// or the bare wildcard "*". An empty Origin header is always allowed so
// non-browser clients and tests can connect.
type OriginChecker struct {
	allowAll bool
	exact    []string
	prefixes []string
}

// NewOriginChecker parses a comma-separated allow-list. An empty list allows
// every origin.
func NewOriginChecker(allowed string) *OriginChecker {
	c := &OriginChecker{}
	for _, entry := range strings.Split(allowed, ",") {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "":
			continue
		case entry == "*":
			c.allowAll = true
		case strings.HasSuffix(entry, "*"):
			c.prefixes = append(c.prefixes, strings.TrimSuffix(entry, "*"))
		default:
			c.exact = append(c.exact, entry)
		}
	}
	if len(c.exact) == 0 && len(c.prefixes) == 0 && !c.allowAll {
		c.allowAll = true
	}
	return c
}

// Allowed reports whether the request's origin may upgrade.
func (c *OriginChecker) Allowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// non-browser client
		return true
	}
	if c.allowAll {
		return true
	}
	for _, e := range c.exact {
		if origin == e {
			return true
		}
	}
	for _, p := range c.prefixes {
		if strings.HasPrefix(origin, p) {
			return true
		}
	}
	return false
}
