package views

import (
	"html/template"
	"net/url"
	"strconv"

	"github.com/leadcontact/blogfront/content"
	"github.com/leadcontact/blogfront/images"
	"github.com/leadcontact/blogfront/markdown"
)

// cardSizes is the sizes attribute for grid card images.
const cardSizes = "(max-width: 768px) 100vw, (max-width: 1200px) 50vw, 33vw"

// TagURL links to the listing filtered by tag. The empty tag links to the
// unfiltered listing.
func TagURL(tag string) string {
	if tag == "" {
		return "/blog"
	}
	return "/blog?tag=" + url.QueryEscape(tag)
}

// PageURL links to a listing page, keeping the active tag.
func PageURL(tag string, page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if tag != "" {
		q.Set("tag", tag)
	}
	return "/blog?" + q.Encode()
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag-pill tag-pill--active"
	}
	return "tag-pill"
}

// ImageSrc returns the src for an image rendered at width w. Local images go
// through the resizer; remote ones are used as-is.
func ImageSrc(src string, w int) string {
	if images.IsLocal(src) {
		return images.URL(src, w)
	}
	return src
}

// Card is a post preview in a grid. Author comes from the roster by position.
type Card struct {
	content.Post
	Author   string
	WithTags bool
}

func templateFuncs(roster Roster) template.FuncMap {
	return template.FuncMap{
		"formatDate": content.FormatDate,
		"tagURL":     TagURL,
		"pageURL":    PageURL,
		"tagClass":   TagClass,
		"imageSrc":   ImageSrc,
		"srcset":     images.SrcSet,
		"cardSizes":  func() string { return cardSizes },
		"add":        func(a, b int) int { return a + b },
		"safeURL":    markdown.SafeURL,
		// HTML and JSON-LD arrive already sanitized or marshalled.
		"markdown": func(s string) template.HTML { return template.HTML(markdown.HTML(s)) },
		"jsonld":   func(s string) template.JS { return template.JS(s) },
		"card": func(p content.Post, i int, withTags bool) Card {
			return Card{Post: p, Author: roster.For(i), WithTags: withTags}
		},
	}
}
