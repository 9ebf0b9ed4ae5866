package content

import "strings"

// allowedTags maps lowercase raw tag text to its display label. Order of the
// slice is the display order of the tag bar.
var allowedTags = []struct {
	key   string
	label string
}{
	{"linkedin", "LinkedIn"},
	{"leadcontact", "LeadContact"},
	{"email", "Email"},
	{"phone", "Phone"},
}

// LookupTag maps a raw tag to its display label. Matching ignores case and
// surrounding whitespace.
func LookupTag(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range allowedTags {
		if t.key == key {
			return t.label, true
		}
	}
	return "", false
}

// AllowedTags returns the display labels of the allow-list in display order.
func AllowedTags() []string {
	out := make([]string, len(allowedTags))
	for i, t := range allowedTags {
		out[i] = t.label
	}
	return out
}

// IsAllowedTag reports whether display is one of the allow-list labels.
// The comparison is case-exact.
func IsAllowedTag(display string) bool {
	for _, t := range allowedTags {
		if t.label == display {
			return true
		}
	}
	return false
}

// NormalizeTags maps raw tags through the allow-list. Unknown tags are dropped
// and duplicates collapse to their first occurrence.
func NormalizeTags(raw []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		label, ok := LookupTag(r)
		if !ok {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
