package blogfront

import (
	"encoding/xml"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/leadcontact/blogfront/content"
	"github.com/leadcontact/blogfront/seo"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

func buildFeed(site seo.Site, posts []content.Post) rssXML {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if t, err := p.Time(); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		description := p.Description
		if description == "" {
			description = p.Excerpt
		}
		postURL := seo.BuildURL(site.URL, "blog", p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: description,
			PubDate:     pubDate,
			GUID:        postURL,
			Categories:  p.DisplayTags(),
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Name,
			Link:        seo.BuildURL(site.URL, "blog"),
			Description: site.Description,
			Language:    "en-us",
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, posts []content.Post) error {
	return writeXML(c, "application/rss+xml; charset=utf-8", buildFeed(a.site, posts))
}
