// Package content holds the static post dataset and the tag allow-list.
package content

import (
	"strings"
	"time"
)

// Post is a single blog entry loaded from the static dataset.
type Post struct {
	Title       string   `json:"title" yaml:"title"`
	Slug        string   `json:"slug" yaml:"slug"`
	Date        string   `json:"date" yaml:"date"`
	Excerpt     string   `json:"excerpt" yaml:"excerpt"`
	Image       string   `json:"image" yaml:"image"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Content     string   `json:"content,omitempty" yaml:"content,omitempty"`
	Video       string   `json:"video,omitempty" yaml:"video,omitempty"`
}

// Link returns the site-relative URL of the post.
func (p Post) Link() string {
	return "/blog/" + p.Slug
}

// DisplayTags returns the post's tags mapped through the allow-list.
func (p Post) DisplayTags() []string {
	return NormalizeTags(p.Tags)
}

// HasTag reports whether the post carries the given display tag.
func (p Post) HasTag(display string) bool {
	for _, t := range p.DisplayTags() {
		if t == display {
			return true
		}
	}
	return false
}

// Time parses the post date. Both plain dates and RFC 3339 timestamps are accepted.
func (p Post) Time() (time.Time, error) {
	return ParseDate(p.Date)
}

// ParseDate parses a dataset date value.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// FormatDate renders a dataset date as "Jan 2, 2006". Unparseable values are
// returned unchanged.
func FormatDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}
