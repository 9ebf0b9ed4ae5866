package blogfront

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// splitList splits a comma or whitespace separated list, dropping empty items.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}

// envBool parses a boolean environment variable. Unset means false.
func envBool(key string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("blogfront: %s: %w", key, err)
	}
	return b, nil
}

// scriptOrigins returns the distinct https origins of the given script URLs.
func scriptOrigins(urls []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			continue
		}
		origin := u.Scheme + "://" + u.Host
		if !seen[origin] {
			seen[origin] = true
			out = append(out, origin)
		}
	}
	return out
}

// validScripts keeps only https script URLs.
func validScripts(urls []string) []string {
	var out []string
	for _, raw := range urls {
		if u, err := url.Parse(raw); err == nil && u.Scheme == "https" && u.Host != "" {
			out = append(out, raw)
		}
	}
	return out
}
