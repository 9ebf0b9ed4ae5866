// Package seo builds page metadata: canonical URLs, Open Graph and Twitter
// cards, and schema.org JSON-LD payloads.
package seo

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// OpenGraph carries og:* properties.
type OpenGraph struct {
	Type        string
	Title       string
	Description string
	URL         string
	Image       string
	SiteName    string
}

// Twitter carries twitter:* properties.
type Twitter struct {
	Card        string
	Title       string
	Description string
	Image       string
}

// Meta is everything rendered into <head> for one page.
type Meta struct {
	Title        string
	Description  string
	Canonical    string
	Robots       string
	Verification string
	OG           OpenGraph
	Twitter      Twitter
	JSONLD       []string
}

// SummaryLargeImage is the Twitter card type used on every page.
const SummaryLargeImage = "summary_large_image"

// AbsoluteURL resolves ref against the site URL. References that already
// start with http are returned unchanged.
func AbsoluteURL(site, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return strings.TrimSuffix(site, "/") + "/" + strings.TrimPrefix(ref, "/")
}

// BuildURL joins path segments onto a base URL without a trailing slash.
func BuildURL(base string, segments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(segments...))
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}

// JSON marshals v compactly. It returns "{}" on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func organization(name string) map[string]any {
	return map[string]any{"@type": "Organization", "name": name}
}

// WebSite returns a WebSite schema.
func WebSite(name, siteURL, description string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
		"url":      siteURL,
	}
	if description != "" {
		m["description"] = description
	}
	return m
}

// Article describes the fields shared by BlogPosting and VideoObject.
type Article struct {
	Headline    string
	Description string
	Date        string
	Image       string
	URL         string
	Publisher   string
	Keywords    []string
}

// BlogPosting returns a BlogPosting schema. The organization is both author
// and publisher.
func BlogPosting(a Article) map[string]any {
	m := map[string]any{
		"@context":         "https://schema.org",
		"@type":            "BlogPosting",
		"headline":         a.Headline,
		"description":      a.Description,
		"datePublished":    a.Date,
		"dateModified":     a.Date,
		"author":           organization(a.Publisher),
		"publisher":        organization(a.Publisher),
		"mainEntityOfPage": a.URL,
	}
	if a.Image != "" {
		m["image"] = a.Image
	}
	if len(a.Keywords) > 0 {
		m["keywords"] = strings.Join(a.Keywords, ", ")
	}
	return m
}

// VideoObject returns a VideoObject schema for an embedded video.
func VideoObject(a Article, embedURL string) map[string]any {
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "VideoObject",
		"name":        a.Headline,
		"description": a.Description,
		"uploadDate":  a.Date,
		"embedUrl":    embedURL,
		"publisher":   organization(a.Publisher),
	}
	if a.Image != "" {
		m["thumbnailUrl"] = []string{a.Image}
	}
	return m
}

// BreadcrumbItem is one step of a breadcrumb trail.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList returns a BreadcrumbList schema with 1-based positions.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}
