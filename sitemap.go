package blogfront

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/leadcontact/blogfront/content"
	"github.com/leadcontact/blogfront/seo"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

func buildSitemap(base string, posts []content.Post) sitemapURLSet {
	urls := make([]sitemapURL, 0, len(posts)+1)
	urls = append(urls, sitemapURL{
		Loc:        seo.BuildURL(base, "blog"),
		ChangeFreq: "daily",
		Priority:   "0.8",
	})
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:        seo.BuildURL(base, "blog", p.Slug),
			LastMod:    p.Date,
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, posts []content.Post) error {
	return writeXML(c, "application/xml; charset=utf-8", buildSitemap(a.Config.URL, posts))
}

func writeXML(c echo.Context, contentType string, v any) error {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(v)
}

// robotsTxt allows everything but the admin area and points crawlers at both
// sitemaps.
func robotsTxt(base string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin/\n\n")
	fmt.Fprintf(&b, "Host: %s\n", base)
	fmt.Fprintf(&b, "Sitemap: %s\n", seo.BuildURL(base, "sitemap.xml"))
	fmt.Fprintf(&b, "Sitemap: %s\n", seo.BuildURL(base, "blog", "sitemap.xml"))
	return b.String()
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, robotsTxt(a.Config.URL))
}
