package seo

import "github.com/leadcontact/blogfront/content"

// Site is the site-wide input to page metadata.
type Site struct {
	Name               string
	URL                string
	Description        string // listing page description
	ArticleDescription string // fallback description for posts
	Verification       string // google-site-verification token
}

func (s Site) base(title, description, canonical string) Meta {
	return Meta{
		Title:        title,
		Description:  description,
		Canonical:    canonical,
		Robots:       "index, follow",
		Verification: s.Verification,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			URL:         canonical,
			SiteName:    s.Name,
		},
		Twitter: Twitter{
			Card:        SummaryLargeImage,
			Title:       title,
			Description: description,
		},
	}
}

// Listing returns metadata for the blog listing page. The first post's image
// becomes the share image.
func Listing(s Site, posts []content.Post) Meta {
	canonical := BuildURL(s.URL, "blog")
	m := s.base(s.Name, s.Description, canonical)
	m.OG.Type = "website"
	if len(posts) > 0 {
		img := AbsoluteURL(s.URL, posts[0].Image)
		m.OG.Image = img
		m.Twitter.Image = img
	}
	m.JSONLD = []string{JSON(WebSite(s.Name, canonical, s.Description))}
	return m
}

// Post returns metadata for a single post page, including BlogPosting and
// BreadcrumbList JSON-LD, plus VideoObject when the post embeds a video.
func Post(s Site, p content.Post) Meta {
	desc := p.Description
	if desc == "" {
		desc = s.ArticleDescription
	}
	postURL := BuildURL(s.URL, "blog", p.Slug)
	m := s.base(p.Title, desc, postURL)
	m.Title = p.Title + " | " + s.Name
	m.OG.Type = "article"
	img := AbsoluteURL(s.URL, p.Image)
	m.OG.Image = img
	m.Twitter.Image = img

	article := Article{
		Headline:    p.Title,
		Description: p.Excerpt,
		Date:        p.Date,
		Image:       img,
		URL:         postURL,
		Publisher:   s.Name,
		Keywords:    p.DisplayTags(),
	}
	m.JSONLD = []string{
		JSON(BlogPosting(article)),
		JSON(BreadcrumbList([]BreadcrumbItem{
			{Name: "Blog", Item: BuildURL(s.URL, "blog")},
			{Name: p.Title, Item: postURL},
		})),
	}
	if p.Video != "" {
		m.JSONLD = append(m.JSONLD, JSON(VideoObject(article, p.Video)))
	}
	return m
}

// Simple returns metadata for utility pages such as error pages.
func Simple(s Site, title string) Meta {
	m := s.base(title, s.Description, "")
	m.Robots = "noindex"
	return m
}
