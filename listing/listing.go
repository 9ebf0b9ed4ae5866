// Package listing filters the post collection by tag, slices it into pages and
// computes the compressed page-number display used by the pagination controls.
package listing

import (
	"strconv"
	"strings"

	"github.com/leadcontact/blogfront/content"
)

// DefaultPageSize is the number of posts per listing page.
const DefaultPageSize = 9

// compactAbove is the page count above which markers are elided.
const compactAbove = 7

// Gap is the label rendered for an elided run of page numbers.
const Gap = "…"

// Marker is one entry of the pagination display: a page number or a gap.
type Marker struct {
	Page int
	Gap  bool
}

func (m Marker) String() string {
	if m.Gap {
		return Gap
	}
	return strconv.Itoa(m.Page)
}

// Result is everything the listing template needs for one request.
type Result struct {
	Posts      []content.Post
	Tag        string
	Page       int
	TotalPages int
	Total      int
	Markers    []Marker
}

// HasPrev reports whether the previous-page control is enabled.
func (r Result) HasPrev() bool { return r.Page != 1 }

// HasNext reports whether the next-page control is enabled.
func (r Result) HasNext() bool { return r.Page != r.TotalPages }

// Prev is the target of the previous-page control.
func (r Result) Prev() int { return max(1, r.Page-1) }

// Next is the target of the next-page control.
func (r Result) Next() int {
	if r.Page >= r.TotalPages {
		return r.TotalPages
	}
	return r.Page + 1
}

// Engine produces listing pages. The zero value uses DefaultPageSize.
type Engine struct {
	PageSize int
}

func (e Engine) size() int {
	if e.PageSize < 1 {
		return DefaultPageSize
	}
	return e.PageSize
}

// List filters posts by tag and returns the requested page. An empty tag
// disables filtering. page is not clamped: a page past the end yields no posts.
func (e Engine) List(posts []content.Post, tag string, page int) Result {
	if page < 1 {
		page = 1
	}
	filtered := Filter(posts, tag)
	size := e.size()
	total := TotalPages(len(filtered), size)

	// Compare in pages before multiplying so huge page values cannot overflow.
	var slice []content.Post
	if page-1 < (len(filtered)+size-1)/size {
		start := (page - 1) * size
		slice = filtered[start:min(start+size, len(filtered))]
	}

	return Result{
		Posts:      slice,
		Tag:        tag,
		Page:       page,
		TotalPages: total,
		Total:      len(filtered),
		Markers:    Markers(page, total),
	}
}

// ListQuery is List with raw query-string values.
func (e Engine) ListQuery(posts []content.Post, tag, page string) Result {
	return e.List(posts, tag, ParsePage(page))
}

// ParsePage parses a page query value. Missing, malformed and non-positive
// values all mean page 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Filter returns the posts whose normalized tags contain tag, in their original
// order. The tag is compared case-exactly against display labels.
func Filter(posts []content.Post, tag string) []content.Post {
	if tag == "" {
		return posts
	}
	var out []content.Post
	for _, p := range posts {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// TotalPages returns max(1, ceil(count/size)).
func TotalPages(count, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	return max(1, (count+size-1)/size)
}

// Markers computes the pagination display for current out of total pages.
// Small page counts list every page. Larger ones keep the first and last page
// and a window of one page either side of current, with a gap where pages are
// elided.
func Markers(current, total int) []Marker {
	if total <= compactAbove {
		out := make([]Marker, 0, total)
		for p := 1; p <= total; p++ {
			out = append(out, Marker{Page: p})
		}
		return out
	}

	current = min(current, total+1)
	start := max(2, current-1)
	end := min(total-1, current+1)

	out := []Marker{{Page: 1}}
	if start > 2 {
		out = append(out, Marker{Gap: true})
	}
	for p := start; p <= end; p++ {
		out = append(out, Marker{Page: p})
	}
	if end < total-1 {
		out = append(out, Marker{Gap: true})
	}
	return append(out, Marker{Page: total})
}
